package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/sim"
	"github.com/san-kum/dpsim/internal/storage"
	"github.com/san-kum/dpsim/internal/viz"
)

// loadRun opens the store and loads the run named by an id prefix.
func loadRun(cmd *cobra.Command, prefix string) (*sim.Trajectory, *storage.RunMetadata, error) {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	tr, meta, err := st.LoadTrajectory(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{"id": meta.ID, "samples": tr.Len()}).Debug("run loaded")
	return tr, meta, nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ShortID(),
					r.Created.Local().Format("2006-01-02 15:04:05"),
					r.Preset,
					r.Integrator,
					fmt.Sprintf("%g", r.Dt),
					strconv.Itoa(r.Steps),
					fmt.Sprintf("%.4gs", r.Duration()),
					measureE(r.MaxDrift),
					strconv.Itoa(r.Crossings),
				}
			}
			fmt.Println(viz.Table([]string{"ID", "CREATED", "PRESET", "INTEG", "DT", "STEPS", "DURATION", "MAX DRIFT", "CROSSINGS"}, rows))
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "print run metadata, energy report and dominant frequency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, meta, err := loadRun(cmd, args[0])
			if err != nil {
				return err
			}

			fmt.Println(viz.Section("RUN",
				viz.KV("id", meta.ID),
				viz.KV("created", meta.Created.Local().Format("2006-01-02 15:04:05")),
				viz.KV("preset", meta.Preset),
				viz.KV("integrator", meta.Integrator),
				viz.KV("dt", meta.Dt),
				viz.KV("steps", meta.Steps),
				viz.KV("params", meta.Params.String()),
				viz.KV("initial state", fmt.Sprint(meta.InitState)),
				viz.KV("final state", tr.Final().String()),
				viz.KV("initial energy", meta.InitialEnergy.String()),
				viz.KV("max drift", meta.MaxDrift.String()),
			))
			fmt.Println(energySection(analysis.EnergyReport(tr)))

			f := analysis.DominantFrequency(tr.Theta1(), tr.Dt)
			period := math.Inf(1)
			if f > 0 {
				period = 1 / f
			}
			fmt.Println(viz.Section("SPECTRUM",
				viz.KV("θ1 frequency", fmt.Sprintf("%.4g Hz", f)),
				viz.KV("θ1 period", fmt.Sprintf("%.4g s", period)),
				viz.KV("crossings", meta.Crossings),
			))
			if len(meta.Metrics) > 0 {
				fmt.Println(viz.Section("METRICS", measureLines(meta.Metrics)...))
			}
			return nil
		},
	}
}

// measureLines lists stored metrics in name order; unavailable values
// read "n/a".
func measureLines(m map[string]storage.Measure) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	lines := make([]string, len(names))
	for i, k := range names {
		lines[i] = viz.KV(k, m[k].String())
	}
	return lines
}

func measureE(m storage.Measure) string {
	if !m.Valid() {
		return m.String()
	}
	return fmtE(float64(m))
}

func energySection(e analysis.EnergySummary) string {
	return viz.Section("ENERGY",
		viz.KV("initial", e.Initial),
		viz.KV("final", e.Final),
		viz.KV("min", e.Min),
		viz.KV("max", e.Max),
		viz.KV("max drift", e.MaxDrift),
		viz.KV("final drift", e.FinalDrift),
	)
}

func newPlotCmd() *cobra.Command {
	var (
		series        []string
		width, height int
		path          bool
	)
	cmd := &cobra.Command{
		Use:   "plot <id>",
		Short: "plot a run's time series in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, meta, err := loadRun(cmd, args[0])
			if err != nil {
				return err
			}
			chart, err := viz.TimeSeriesASCII(tr, series, width, height)
			if err != nil {
				return err
			}
			fmt.Printf("run: %s\nsamples: %d\n\n", meta.ID, tr.Len())
			fmt.Println(chart)
			if path {
				fmt.Println()
				fmt.Println(viz.PathASCII(tr, height*2, height))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&series, "series", []string{"x1", "y1", "x2", "y2"}, "series to plot")
	cmd.Flags().IntVar(&width, "width", 80, "chart width")
	cmd.Flags().IntVar(&height, "height", 15, "chart height")
	cmd.Flags().BoolVar(&path, "path", false, "also draw the bob paths")
	return cmd
}

func newPoincareCmd() *cobra.Command {
	var (
		skip          int
		out           string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "poincare <id>",
		Short: "draw the Poincaré section θ1 = 0 mod 2π, ω1 > 0",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := loadRun(cmd, args[0])
			if err != nil {
				return err
			}
			cs, err := analysis.PoincareSection(tr, analysis.SectionOptions{Skip: skip, Wrap: true})
			if err != nil {
				return err
			}
			fmt.Printf("%d crossings (θ2 horizontal, ω2 vertical)\n", len(cs))
			fmt.Println(viz.PoincareASCII(cs, width, height))
			if out != "" {
				if err := viz.RenderPoincare(cs, out); err != nil {
					return err
				}
				log.WithField("path", out).Info("section written")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "transient samples to drop")
	cmd.Flags().StringVar(&out, "out", "", "also write an image (png, svg or pdf)")
	cmd.Flags().IntVar(&width, "width", 72, "chart width")
	cmd.Flags().IntVar(&height, "height", 24, "chart height")
	return cmd
}

func newEnergyCmd() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "energy <id>",
		Short: "print the energy drift report and chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := loadRun(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Println(energySection(analysis.EnergyReport(tr)))
			fmt.Println(viz.EnergyASCII(tr, width, height))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "chart width")
	cmd.Flags().IntVar(&height, "height", 12, "chart height")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		outDir string
		format string
		skip   int
	)
	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "write path, timeseries, poincare and energy images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, meta, err := loadRun(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := viz.Format("x." + format); err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			cs, err := analysis.PoincareSection(tr, analysis.SectionOptions{Skip: skip, Wrap: true})
			if err != nil {
				return err
			}

			name := func(kind string) string {
				return filepath.Join(outDir, fmt.Sprintf("%s-%s.%s", meta.ShortID(), kind, format))
			}
			renders := []struct {
				kind string
				fn   func(string) error
			}{
				{"path", func(p string) error { return viz.RenderPath(tr, p) }},
				{"timeseries", func(p string) error { return viz.RenderTimeSeries(tr, p) }},
				{"poincare", func(p string) error { return viz.RenderPoincare(cs, p) }},
				{"energy", func(p string) error { return viz.RenderEnergy(tr, p) }},
			}
			for _, r := range renders {
				p := name(r.kind)
				if err := r.fn(p); err != nil {
					return fmt.Errorf("render %s: %w", r.kind, err)
				}
				log.WithField("path", p).Info("image written")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().StringVar(&format, "format", "png", "image format (png, svg, pdf)")
	cmd.Flags().IntVar(&skip, "skip", 0, "transient samples dropped from the section")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "remove a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(cmd.Context(), args[0], func(st *storage.Store, id string) error {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				log.WithField("id", id).Info("run deleted")
				return nil
			})
		},
	}
}

func newExportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv <id>",
		Short: "write a run's states as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(cmd.Context(), args[0], func(st *storage.Store, id string) error {
				return st.ExportCSV(cmd.Context(), os.Stdout, id)
			})
		},
	}
}

func newExportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json <id>",
		Short: "write a run's metadata and states as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(cmd.Context(), args[0], func(st *storage.Store, id string) error {
				return st.ExportJSON(cmd.Context(), os.Stdout, id)
			})
		},
	}
}
