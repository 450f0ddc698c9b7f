package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

// cancelCheckInterval is how many steps pass between context checks.
const cancelCheckInterval = 1024

type Simulator struct {
	params     physics.Params
	integrator dynamo.Integrator
	observers  []dynamo.Observer
}

func New(params physics.Params, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		params:     params,
		integrator: integrator,
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() physics.Params        { return s.params }
func (s *Simulator) Integrator() dynamo.Integrator { return s.integrator }

// Run applies the integrator exactly cfg.Steps times starting from x0 at
// t=0. A derivative error stops the run; the samples produced so far are
// returned together with a *dynamo.SimulationError.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Trajectory, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	tr := &Trajectory{
		Times:      make([]float64, 0, cfg.Steps+1),
		States:     make([]dynamo.State, 0, cfg.Steps+1),
		Params:     s.params,
		Integrator: s.integrator.Name(),
		Dt:         cfg.Dt,
		Steps:      cfg.Steps,
	}

	f := s.params.Func()
	x := x0.Clone()
	s.record(tr, 0, 0, x)

	for i := 0; i < cfg.Steps; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return tr, err
			}
		}

		t := float64(i) * cfg.Dt
		next, err := s.integrator.Step(f, x, t, cfg.Dt)
		if err != nil {
			return tr, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}

		if cfg.ValidateState && !next.IsValid() {
			return tr, &dynamo.SimulationError{Step: i + 1, Time: t + cfg.Dt, State: next, Wrapped: dynamo.ErrInvalidState}
		}

		x = next
		s.record(tr, i+1, float64(i+1)*cfg.Dt, x)
	}

	return tr, nil
}

func (s *Simulator) record(tr *Trajectory, step int, t float64, x dynamo.State) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x)
	for _, obs := range s.observers {
		obs.OnStep(step, t, x)
	}
}

func (s *Simulator) validate(x0 dynamo.State, cfg Config) error {
	if s.integrator == nil {
		return fmt.Errorf("%w: no integrator", dynamo.ErrInvalidConfig)
	}
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %v", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfig, cfg.Steps)
	}
	if len(x0) != dynamo.StateDim {
		return fmt.Errorf("%w: initial state has %d components, want %d", dynamo.ErrDimensionMismatch, len(x0), dynamo.StateDim)
	}
	return nil
}

// Run is a shorthand for a single observer-free run.
func Run(ctx context.Context, x0 dynamo.State, params physics.Params, integ dynamo.Integrator, dt float64, numstep int) (*Trajectory, error) {
	return New(params, integ).Run(ctx, x0, Config{Dt: dt, Steps: numstep})
}
