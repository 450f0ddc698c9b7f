package integrators

import "github.com/san-kum/dpsim/internal/dynamo"

// RK2 is Heun's predictor-corrector (trapezoidal) second-order scheme:
//
//	k0 = dt·f(y, t)
//	k1 = dt·f(y + k0, t + dt)
//	y' = y + (k0 + k1)/2
type RK2 struct{}

func NewRK2() *RK2 {
	return &RK2{}
}

func (r *RK2) Name() string { return "rk2" }
func (r *RK2) Order() int   { return 2 }

func (r *RK2) Step(f dynamo.Func, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)

	d0, err := f(x, t)
	if err != nil {
		return nil, err
	}
	k0 := make(dynamo.State, n)
	pred := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		k0[i] = dt * d0[i]
		pred[i] = x[i] + k0[i]
	}

	d1, err := f(pred, t+dt)
	if err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + 0.5*(k0[i]+dt*d1[i])
	}
	return result, nil
}
