// Package physics provides the point-mass double pendulum model.
//
// [Params] is a value type: its [Params.Derive] method is the closed-form
// vector field obtained from the Lagrangian, and [Params.Energy] the total
// mechanical energy used to validate integrators.
//
//	p := physics.DefaultParams()
//	dx, err := p.Derive(dynamo.NewState(0.5, 0.3, 0, 0), 0)
//
// # Energy Conservation
//
// The model is conservative, so Energy evaluated along an exact trajectory is
// constant. Any drift observed along a numerical trajectory is integrator
// error. [DoublePendulum] wraps Params and implements [dynamo.Configurable]
// for the live view.
package physics
