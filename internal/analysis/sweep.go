package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/sim"
)

// SweepPoint is the section and energy behaviour of one initial condition
// in a sweep.
type SweepPoint struct {
	Value     float64
	Initial   dynamo.State
	Crossings []Crossing
	Energy    EnergySummary
}

// SectionSweep varies state component index of base linearly over
// [from, to] in n runs, integrates each concurrently and reduces every run
// to its Poincaré section. This is the double pendulum's analogue of a
// bifurcation diagram.
func SectionSweep(ctx context.Context, s *sim.Simulator, base dynamo.State, index int, from, to float64, n int, cfg sim.Config, opts SectionOptions, workers int) ([]SweepPoint, error) {
	if index < 0 || index >= len(base) {
		return nil, fmt.Errorf("%w: sweep index %d", dynamo.ErrDimensionMismatch, index)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: sweep needs at least one point", dynamo.ErrInvalidConfig)
	}

	values := make([]float64, n)
	inits := make([]dynamo.State, n)
	for i := range values {
		values[i] = from
		if n > 1 {
			values[i] = from + float64(i)*(to-from)/float64(n-1)
		}
		x := base.Clone()
		x[index] = values[i]
		inits[i] = x
	}

	trs, err := sim.NewEnsemble(s, workers).Run(ctx, inits, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]SweepPoint, n)
	for i, tr := range trs {
		cs, err := PoincareSection(tr, opts)
		if err != nil {
			return nil, fmt.Errorf("section for %v: %w", values[i], err)
		}
		out[i] = SweepPoint{
			Value:     values[i],
			Initial:   inits[i],
			Crossings: cs,
			Energy:    EnergyReport(tr),
		}
	}
	return out, nil
}
