package main

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/experiment"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/logging"
	"github.com/san-kum/dpsim/internal/sim"
	"github.com/san-kum/dpsim/internal/viz"
)

func newRunCmd() *cobra.Command {
	var f simFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "integrate a double pendulum and store the run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return runSimulation(cmd, cfg, f.preset)
		},
	}
	addSimFlags(cmd, &f)
	return cmd
}

func runSimulation(cmd *cobra.Command, cfg *config.Config, preset string) error {
	ctx := cmd.Context()

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	exp.AddObserver(logging.NewProgress(log, max(cfg.Steps/10, 1)))

	log.WithFields(logrus.Fields{
		"integrator": cfg.Integrator,
		"dt":         cfg.Dt,
		"steps":      cfg.Steps,
		"state":      cfg.GetInitState(),
	}).Info("running simulation")

	res, runErr := exp.Run(ctx)
	if res == nil {
		return runErr
	}
	if runErr != nil {
		log.WithError(runErr).Warn("simulation stopped early; storing partial run")
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(ctx, res.Trajectory, res.Metadata(preset))
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"id": id, "samples": res.Trajectory.Len()}).Info("run saved")

	lines := []string{
		viz.KV("run id", id),
		viz.KV("integrator", cfg.Integrator),
		viz.KV("dt", cfg.Dt),
		viz.KV("steps", res.Trajectory.Len()-1),
		viz.KV("duration", fmt.Sprintf("%.4gs", res.Trajectory.Duration())),
		viz.KV("elapsed", res.Elapsed.String()),
		viz.KV("E(0)", res.Energy.Initial),
		viz.KV("max drift", res.Energy.MaxDrift),
		viz.KV("crossings", len(res.Crossings)),
	}
	fmt.Println(viz.Section("RUN", lines...))
	fmt.Println(viz.Section("METRICS", metricLines(res.Metrics)...))
	return runErr
}

func metricLines(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	lines := make([]string, len(names))
	for i, k := range names {
		lines[i] = viz.KV(k, m[k])
	}
	return lines
}

func newCompareCmd() *cobra.Command {
	var f simFlags
	var names []string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "run every integrator from the same initial condition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			results, err := experiment.Compare(cmd.Context(), cfg, names)
			if err != nil {
				return err
			}

			rows := make([][]string, len(results))
			for i, r := range results {
				x := r.Trajectory.Final()
				rows[i] = []string{
					r.Trajectory.Integrator,
					fmtF(x[dynamo.Theta1]), fmtF(x[dynamo.Theta2]),
					fmtF(x[dynamo.Omega1]), fmtF(x[dynamo.Omega2]),
					fmtE(r.Energy.MaxDrift), fmtE(r.Energy.FinalDrift),
					strconv.Itoa(len(r.Crossings)),
					r.Elapsed.String(),
				}
			}
			fmt.Printf("t = %.4gs, dt = %g, initial state %v\n", cfg.Duration(), cfg.Dt, cfg.GetInitState())
			fmt.Println(viz.Table([]string{"INTEGRATOR", "θ1", "θ2", "ω1", "ω2", "MAX DRIFT", "FINAL DRIFT", "CROSSINGS", "TIME"}, rows))
			return nil
		},
	}
	addSimFlags(cmd, &f)
	cmd.Flags().StringSliceVar(&names, "integrators", integrators.Names(), "integrators to compare")
	return cmd
}

func newConvergeCmd() *cobra.Command {
	var f simFlags
	var (
		span   float64
		dt0    float64
		levels int
	)
	cmd := &cobra.Command{
		Use:   "converge",
		Short: "measure the observed order of accuracy of each integrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			dts := analysis.HalvingSteps(dt0, levels)

			var rows [][]string
			for _, integ := range integrators.All() {
				conv, err := analysis.ConvergenceOrder(cmd.Context(), cfg.Params, cfg.GetInitState(), integ, span, dts)
				if err != nil {
					return fmt.Errorf("%s: %w", integ.Name(), err)
				}
				for i, dt := range conv.Dts {
					order := "-"
					if i > 0 {
						order = fmt.Sprintf("%.2f", conv.Orders[i-1])
					}
					rows = append(rows, []string{conv.Integrator, strconv.Itoa(integ.Order()), fmt.Sprintf("%g", dt), fmtE(conv.Errors[i]), order})
				}
			}
			fmt.Printf("error at t = %g against RK4 at dt = %g\n", span, slices.Min(dts)/64)
			fmt.Println(viz.Table([]string{"INTEGRATOR", "NOMINAL", "DT", "ERROR", "OBSERVED"}, rows))
			return nil
		},
	}
	addSimFlags(cmd, &f)
	cmd.Flags().Float64Var(&span, "time", 1.0, "integration time T")
	cmd.Flags().Float64Var(&dt0, "dt0", 0.01, "coarsest step size")
	cmd.Flags().IntVar(&levels, "levels", 5, "number of halvings")
	return cmd
}

func newLyapunovCmd() *cobra.Command {
	var f simFlags
	var d0 float64
	cmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			integ, err := integrators.Lookup(cfg.Integrator)
			if err != nil {
				return err
			}
			ly, err := analysis.LyapunovExponent(cfg.Params, cfg.GetInitState(), integ, cfg.Dt, cfg.Steps, d0)
			if err != nil {
				return err
			}

			verdict := "regular"
			if ly.Exponent > 0.01 {
				verdict = "chaotic"
			}
			fmt.Println(viz.Section("LYAPUNOV",
				viz.KV("initial state", cfg.GetInitState().String()),
				viz.KV("λ (1/s)", ly.Exponent),
				viz.KV("lyapunov time", ly.Time),
				viz.KV("steps", ly.Steps),
				viz.KV("motion", verdict),
			))
			return nil
		},
	}
	addSimFlags(cmd, &f)
	cmd.Flags().Float64Var(&d0, "d0", 1e-8, "initial separation")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var f simFlags
	var (
		component string
		from, to  float64
		n         int
		workers   int
		skip      int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run an ensemble over a range of one initial-state component",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			index, err := componentIndex(component)
			if err != nil {
				return err
			}
			integ, err := integrators.Lookup(cfg.Integrator)
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"component": component, "from": from, "to": to, "runs": n, "workers": workers,
			}).Info("starting sweep")

			opts := analysis.SectionOptions{Skip: skip, Wrap: true}
			points, err := analysis.SectionSweep(cmd.Context(), sim.New(cfg.Params, integ), cfg.GetInitState(), index, from, to, n, cfg.SimConfig(), opts, workers)
			if err != nil {
				return err
			}
			log.WithField("runs", len(points)).Info("sweep finished")

			rows := make([][]string, len(points))
			for i, p := range points {
				rows[i] = []string{fmtF(p.Value), strconv.Itoa(len(p.Crossings)), fmtE(p.Energy.MaxDrift)}
			}
			fmt.Println(viz.Table([]string{strings.ToUpper(component), "CROSSINGS", "MAX DRIFT"}, rows))
			fmt.Println(viz.SweepASCII(points, 72, 18))
			return nil
		},
	}
	addSimFlags(cmd, &f)
	cmd.Flags().StringVar(&component, "component", "theta1", "state component to vary (theta1, theta2, omega1, omega2)")
	cmd.Flags().Float64Var(&from, "from", 0.1, "first value")
	cmd.Flags().Float64Var(&to, "to", 3.0, "last value")
	cmd.Flags().IntVar(&n, "n", 16, "number of runs")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&skip, "skip", 0, "transient samples dropped from each section")
	return cmd
}

func componentIndex(name string) (int, error) {
	switch name {
	case "theta1":
		return dynamo.Theta1, nil
	case "theta2":
		return dynamo.Theta2, nil
	case "omega1":
		return dynamo.Omega1, nil
	case "omega2":
		return dynamo.Omega2, nil
	}
	return 0, fmt.Errorf("%w: unknown component %q", dynamo.ErrInvalidConfig, name)
}

func newLiveCmd() *cobra.Command {
	var f simFlags
	var gifPath string
	cmd := &cobra.Command{
		Use:   "live",
		Short: "animate the pendulum in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			integ, err := integrators.Lookup(cfg.Integrator)
			if err != nil {
				return err
			}
			name := f.preset
			if name == "" {
				name = "double pendulum"
			}
			return viz.RunLive(cfg.Params, integ, cfg.GetInitState(), cfg.Dt, viz.LiveOptions{Name: name, Theme: theme, GIFPath: gifPath})
		},
	}
	addSimFlags(cmd, &f)
	cmd.Flags().StringVar(&gifPath, "gif", "dpsim.gif", "where the G key saves recordings")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list named initial conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				s := p.Config.InitState
				rows = append(rows, []string{
					name, p.Description,
					fmtF(s.Theta1), fmtF(s.Theta2), fmtF(s.Omega1), fmtF(s.Omega2),
					fmt.Sprintf("%g", p.Config.Dt), strconv.Itoa(p.Config.Steps),
				})
			}
			fmt.Println(viz.Table([]string{"NAME", "DESCRIPTION", "θ1", "θ2", "ω1", "ω2", "DT", "STEPS"}, rows))
			return nil
		},
	}
}

func newInitConfigCmd() *cobra.Command {
	var f simFlags
	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "write the resolved configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			log.WithField("path", args[0]).Info("config written")
			return nil
		},
	}
	addSimFlags(cmd, &f)
	return cmd
}

func fmtF(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func fmtE(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(v, 'e', 3, 64)
}
