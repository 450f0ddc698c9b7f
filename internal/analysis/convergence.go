package analysis

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

// referenceRefinement divides the smallest step size for the RK4 reference.
const referenceRefinement = 64

type Convergence struct {
	Integrator string
	Dts        []float64
	Errors     []float64
	// Orders[i] is the observed order between Dts[i] and Dts[i+1].
	Orders []float64
}

// ConvergenceOrder integrates x0 to time T once per step size and compares
// each endpoint with a fine RK4 reference. Every dt must divide T into a
// whole number of steps.
func ConvergenceOrder(ctx context.Context, params physics.Params, x0 dynamo.State, integ dynamo.Integrator, T float64, dts []float64) (*Convergence, error) {
	if len(dts) < 2 {
		return nil, fmt.Errorf("%w: need at least two step sizes", dynamo.ErrInvalidConfig)
	}

	finest := slices.Min(dts)
	ref, err := endpoint(ctx, params, x0, integrators.NewRK4(), T, finest/referenceRefinement)
	if err != nil {
		return nil, fmt.Errorf("reference solution: %w", err)
	}

	res := &Convergence{
		Integrator: integ.Name(),
		Dts:        slices.Clone(dts),
		Errors:     make([]float64, len(dts)),
		Orders:     make([]float64, len(dts)-1),
	}

	for i, dt := range dts {
		x, err := endpoint(ctx, params, x0, integ, T, dt)
		if err != nil {
			return nil, fmt.Errorf("dt=%g: %w", dt, err)
		}
		res.Errors[i] = floats.Distance(x, ref, 2)
	}

	for i := range res.Orders {
		res.Orders[i] = math.Log(res.Errors[i]/res.Errors[i+1]) / math.Log(dts[i]/dts[i+1])
	}

	return res, nil
}

func endpoint(ctx context.Context, params physics.Params, x0 dynamo.State, integ dynamo.Integrator, T, dt float64) (dynamo.State, error) {
	steps := int(math.Round(T / dt))
	if steps <= 0 || math.Abs(float64(steps)*dt-T) > 1e-9*math.Max(1, T) {
		return nil, fmt.Errorf("%w: dt=%g does not divide T=%g", dynamo.ErrInvalidConfig, dt, T)
	}
	tr, err := sim.Run(ctx, x0, params, integ, dt, steps)
	if err != nil {
		return nil, err
	}
	return tr.Final(), nil
}

// HalvingSteps returns n step sizes starting at dt0, each half the previous.
func HalvingSteps(dt0 float64, n int) []float64 {
	dts := make([]float64, n)
	for i := range dts {
		dts[i] = dt0 / math.Pow(2, float64(i))
	}
	return dts
}
