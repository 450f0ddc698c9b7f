// Package dynamo provides core simulation primitives for the double pendulum.
//
// The package defines the fundamental types shared by every other package:
//
//   - [State]: phase-space vector (θ1, θ2, ω1, ω2)
//   - [Func]: vector field dX/dt = f(X, t)
//   - [Integrator]: fixed-step numerical scheme
//   - [Observer]: per-sample hook used by the trajectory driver
//
// # Example
//
//	p := physics.DefaultParams()
//	next, err := integrators.NewRK4().Step(p.Func(), x, 0, 0.01)
//
// # Thread Safety
//
// States are plain slices and every helper returns a fresh copy. Integrators
// carry no scratch buffers, so one value can be shared across goroutines.
package dynamo
