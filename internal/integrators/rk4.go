package integrators

import "github.com/san-kum/dpsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. Increments are
// scaled by dt before they are combined:
//
//	k1 = dt·f(y, t)
//	k2 = dt·f(y + k1/2, t + dt/2)
//	k3 = dt·f(y + k2/2, t + dt/2)
//	k4 = dt·f(y + k3, t + dt)
//	y' = y + (k1 + 2k2 + 2k3 + k4)/6
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }
func (r *RK4) Order() int   { return 4 }

func (r *RK4) Step(f dynamo.Func, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)
	scratch := make(dynamo.State, n)

	k1, err := increment(f, x, t, dt)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + k1[i]/2
	}
	k2, err := increment(f, scratch, t+dt/2, dt)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + k2[i]/2
	}
	k3, err := increment(f, scratch, t+dt/2, dt)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + k3[i]
	}
	k4, err := increment(f, scratch, t+dt, dt)
	if err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + (1.0/6)*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}

// increment returns dt·f(x, t) in a fresh slice.
func increment(f dynamo.Func, x dynamo.State, t, dt float64) (dynamo.State, error) {
	d, err := f(x, t)
	if err != nil {
		return nil, err
	}
	k := make(dynamo.State, len(d))
	for i := range d {
		k[i] = dt * d[i]
	}
	return k, nil
}
