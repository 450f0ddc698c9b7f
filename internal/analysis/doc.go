// Package analysis derives diagnostics from simulated trajectories.
//
//   - [PoincareSection]: crossings of θ1 = 2πn with ω1 > 0, located by [LinInterp]
//   - [EnergyReport]: conservation of mechanical energy over a run
//   - [ConvergenceOrder]: observed order of accuracy against a fine RK4 reference
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum], [DominantFrequency]: spectral content of a component
//   - [SectionSweep]: Poincaré sections over a range of initial conditions
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	ly, err := analysis.LyapunovExponent(params, x0, integrators.NewRK4(), 0.001, 20000, 1e-8)
//	if err == nil && ly.Exponent > 0 {
//	    // trajectories decorrelate after about ly.Time seconds
//	}
package analysis
