package integrators

import "github.com/san-kum/dpsim/internal/dynamo"

// Euler is the explicit first-order scheme y' = y + dt·f(y, t). It drifts
// energy quickly and is kept as the baseline worst case.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Order() int   { return 1 }

func (e *Euler) Step(f dynamo.Func, x dynamo.State, t, dt float64) (dynamo.State, error) {
	dx, err := f(x, t)
	if err != nil {
		return nil, err
	}
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
