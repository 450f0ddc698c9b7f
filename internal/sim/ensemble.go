package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// Ensemble runs independent initial conditions through the same model and
// integrator concurrently. Observers of the base simulator are not shared.
type Ensemble struct {
	base    *Simulator
	workers int
}

// NewEnsemble bounds concurrency at workers; zero or less means GOMAXPROCS.
func NewEnsemble(s *Simulator, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{base: s, workers: workers}
}

// Run returns one trajectory per initial state, in input order. The first
// failing run cancels the rest and its error is returned.
func (e *Ensemble) Run(ctx context.Context, inits []dynamo.State, cfg Config) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(inits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, x0 := range inits {
		i, x0 := i, x0
		g.Go(func() error {
			s := New(e.base.params, e.base.integrator)
			tr, err := s.Run(gctx, x0, cfg)
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
