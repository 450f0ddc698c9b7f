package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

type Lyapunov struct {
	Exponent float64
	// Time is 1/Exponent, or +Inf when the exponent is not positive.
	Time  float64
	Steps int
}

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run the reference and a copy displaced by d0 in θ1
// 2. After every step, accumulate ln(|δx|/d0)
// 3. Rescale the displacement back to length d0
// 4. λ ≈ sum / (steps·dt)
func LyapunovExponent(params physics.Params, x0 dynamo.State, integ dynamo.Integrator, dt float64, steps int, d0 float64) (Lyapunov, error) {
	if !(d0 > 0) {
		return Lyapunov{}, fmt.Errorf("%w: perturbation must be positive, got %v", dynamo.ErrInvalidConfig, d0)
	}
	if !(dt > 0) || steps <= 0 {
		return Lyapunov{}, fmt.Errorf("%w: dt=%v steps=%d", dynamo.ErrInvalidConfig, dt, steps)
	}
	if len(x0) != dynamo.StateDim {
		return Lyapunov{}, dynamo.ErrDimensionMismatch
	}

	f := params.Func()
	x := x0.Clone()
	xp := x0.Clone()
	xp[dynamo.Theta1] += d0

	sumLog := 0.0
	for i := 0; i < steps; i++ {
		t := float64(i) * dt

		var err error
		if x, err = integ.Step(f, x, t, dt); err != nil {
			return Lyapunov{}, &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: err}
		}
		if xp, err = integ.Step(f, xp, t, dt); err != nil {
			return Lyapunov{}, &dynamo.SimulationError{Step: i, Time: t, State: xp, Wrapped: err}
		}

		sep := floats.Distance(x, xp, 2)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			xp = x.Clone()
			xp[dynamo.Theta1] += d0
			continue
		}
		sumLog += math.Log(sep / d0)

		// Renormalize to prevent saturation
		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	lambda := sumLog / (float64(steps) * dt)
	res := Lyapunov{Exponent: lambda, Time: math.Inf(1), Steps: steps}
	if lambda > 0 {
		res.Time = 1 / lambda
	}
	return res, nil
}
