// Package viz renders double pendulum trajectories.
//
// Three kinds of output are provided:
//
//   - terminal charts: asciigraph time series ([TimeSeriesASCII],
//     [EnergyASCII]), the bob paths on a braille [Canvas] ([PathASCII]) and
//     rune-grid scatters for Poincaré sections and sweeps
//   - images through gonum/plot ([RenderPath], [RenderTimeSeries],
//     [RenderPoincare], [RenderEnergy]); the format follows the file
//     extension (png, svg or pdf)
//   - a live Bubble Tea animation ([RunLive]) and a preset menu in front of
//     it ([RunPicker])
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	+ -   - Double/halve the step size
//	Tab   - Cycle physical parameters, Up/Down to tune
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Q     - Quit
package viz
