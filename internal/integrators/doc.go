// Package integrators provides the fixed-step explicit schemes used to
// advance the double pendulum: [Euler] (first order), [RK2] (Heun, second
// order) and [RK4] (classical, fourth order).
//
// None of them estimate error or adapt the step. For a chaotic system any
// fixed-step trajectory departs from the true one after roughly a Lyapunov
// time, Euler soonest; that divergence is expected and is not a defect.
package integrators
