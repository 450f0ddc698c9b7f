package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/sim"
	"github.com/san-kum/dpsim/internal/storage"
)

// stabilityThreshold bounds |ω| for the stability metric, in rad/s.
const stabilityThreshold = 100.0

// Result bundles a trajectory with the diagnostics every run reports.
type Result struct {
	Trajectory *sim.Trajectory
	Crossings  []analysis.Crossing
	Energy     analysis.EnergySummary
	Metrics    map[string]float64
	Elapsed    time.Duration
}

type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
	metrics   metrics.Set
	flips     *metrics.Flips
}

// New validates cfg and wires the integrator, simulator and default
// metrics it names.
func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	flips := metrics.NewFlips(dynamo.Theta2)
	e := &Experiment{
		cfg:       cfg.Clone(),
		simulator: sim.New(cfg.Params, integ),
		metrics: metrics.Set{
			metrics.NewEnergyDrift(cfg.Params),
			metrics.NewStability(stabilityThreshold),
			metrics.NewFlips(dynamo.Theta1),
			flips,
		},
		flips: flips,
	}
	e.simulator.AddObserver(e.metrics)
	return e, nil
}

// AddObserver attaches an extra observer to the underlying simulator.
func (e *Experiment) AddObserver(o dynamo.Observer) { e.simulator.AddObserver(o) }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Run integrates the configured initial state and reduces the trajectory.
// On a simulation error the partial result is returned alongside it.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	e.metrics.Reset()

	start := time.Now()
	tr, runErr := e.simulator.Run(ctx, e.cfg.GetInitState(), e.cfg.SimConfig())
	elapsed := time.Since(start)
	if tr == nil {
		return nil, runErr
	}

	crossings, err := analysis.PoincareSection(tr, analysis.SectionOptions{
		Skip: e.cfg.Poincare.Skip,
		Wrap: e.cfg.Poincare.Wrap,
	})
	if err != nil && runErr == nil {
		runErr = fmt.Errorf("poincare section: %w", err)
	}

	m := e.metrics.Values()
	m["first_flip_theta2"] = e.flips.FirstFlip()

	return &Result{
		Trajectory: tr,
		Crossings:  crossings,
		Energy:     analysis.EnergyReport(tr),
		Metrics:    m,
		Elapsed:    elapsed,
	}, runErr
}

// Metadata is the catalog entry describing r.
func (r *Result) Metadata(preset string) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:    preset,
		MaxDrift:  storage.Measure(r.Energy.MaxDrift),
		Crossings: len(r.Crossings),
		Metrics:   storage.Measures(r.Metrics),
	}
}

// Compare runs cfg once per named integrator from the same initial state.
func Compare(ctx context.Context, cfg *config.Config, names []string) ([]*Result, error) {
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		c := cfg.Clone()
		c.Integrator = name

		exp, err := New(c)
		if err != nil {
			return nil, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, res)
	}
	return results, nil
}
