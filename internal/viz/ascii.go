package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/optim"
	"github.com/san-kum/dpsim/internal/sim"
)

// SeriesNames lists the series TimeSeriesASCII and RenderTimeSeries accept.
var SeriesNames = []string{"x1", "y1", "x2", "y2", "theta1", "theta2", "omega1", "omega2", "energy"}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow,
	asciigraph.Cyan, asciigraph.Magenta, asciigraph.White, asciigraph.Gray,
	asciigraph.Orange,
}

// SeriesByName extracts a named series from tr.
func SeriesByName(tr *sim.Trajectory, name string) ([]float64, error) {
	switch name {
	case "x1", "y1", "x2", "y2":
		pos := tr.Positions()
		return map[string][]float64{"x1": pos.X1, "y1": pos.Y1, "x2": pos.X2, "y2": pos.Y2}[name], nil
	case "theta1":
		return tr.Theta1(), nil
	case "theta2":
		return tr.Theta2(), nil
	case "omega1":
		return tr.Omega1(), nil
	case "omega2":
		return tr.Omega2(), nil
	case "energy":
		return tr.Energies(), nil
	}
	return nil, fmt.Errorf("unknown series %q (want one of %s)", name, strings.Join(SeriesNames, ", "))
}

// TimeSeriesASCII plots the named series of tr against time.
func TimeSeriesASCII(tr *sim.Trajectory, names []string, width, height int) (string, error) {
	if tr == nil || tr.Len() == 0 {
		return "", fmt.Errorf("empty trajectory")
	}
	if len(names) == 0 {
		names = []string{"x1", "y1", "x2", "y2"}
	}
	data := make([][]float64, 0, len(names))
	for _, n := range names {
		s, err := SeriesByName(tr, n)
		if err != nil {
			return "", err
		}
		data = append(data, gaps(s))
	}
	colors := make([]asciigraph.AnsiColor, len(names))
	for i := range names {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
		asciigraph.Caption(fmt.Sprintf("t = 0 .. %.4g s (%s, dt=%g)", tr.Duration(), tr.Integrator, tr.Dt)),
	), nil
}

// EnergyASCII plots E(t).
func EnergyASCII(tr *sim.Trajectory, width, height int) string {
	if tr == nil || tr.Len() == 0 {
		return ""
	}
	return asciigraph.Plot(gaps(tr.Energies()),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("Energy"),
	)
}

// PathASCII draws the x-y path of both bobs on a braille canvas of
// width×height cells, with the pivot at the centre.
func PathASCII(tr *sim.Trajectory, width, height int) string {
	c := NewCanvas(width, height)
	if tr == nil || tr.Len() == 0 {
		return c.String()
	}
	v := SquareViewport(tr.Params.Reach() * 1.05)
	pos := tr.Positions()
	for i := 1; i < len(pos.X1); i++ {
		c.Line(v, pos.X1[i-1], pos.Y1[i-1], pos.X1[i], pos.Y1[i])
		c.Line(v, pos.X2[i-1], pos.Y2[i-1], pos.X2[i], pos.Y2[i])
	}
	c.Dot(v, 0, 0)
	return c.String()
}

// ScatterASCII draws points on a width×height rune grid with axes through
// the origin when visible.
func ScatterASCII(xs, ys []float64, width, height int) string {
	if len(xs) == 0 || width < 2 || height < 2 {
		return "No crossings detected"
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	if minX > maxX {
		return "No crossings detected"
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX, rangeY = maxX-minX, maxY-minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		col := int((xs[i] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((ys[i]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := range grid {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := range grid[row] {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "x: [%.3f, %.3f]  y: [%.3f, %.3f]  n=%d\n", minX, maxX, minY, maxY, len(xs))
	return sb.String()
}

// PoincareASCII draws the (θ2, ω2) section.
func PoincareASCII(cs []analysis.Crossing, width, height int) string {
	th, om := analysis.SectionPoints(cs)
	return ScatterASCII(th, om, width, height)
}

// SweepASCII plots the θ2 value of every crossing against the swept
// parameter, one column per sweep point.
func SweepASCII(points []analysis.SweepPoint, width, height int) string {
	var xs, ys []float64
	for _, p := range points {
		for _, c := range p.Crossings {
			xs = append(xs, p.Value)
			ys = append(ys, c.Theta2)
		}
	}
	return ScatterASCII(xs, ys, width, height)
}

// gaps replaces non-finite samples with NaN, which asciigraph leaves blank.
func gaps(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if finite(v) {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

var shades = []rune{'█', '▓', '▒', '░'}

// FlipMapASCII shades each grid cell by how early the outer arm flipped:
// darker is faster, blank never flipped. θ1 runs left to right and θ2
// bottom to top.
func FlipMapASCII(m *optim.FlipMap) string {
	if m == nil || len(m.Cells) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := len(m.Cells) - 1; i >= 0; i-- {
		for _, c := range m.Cells[i] {
			r := ' '
			if !math.IsInf(c.FirstFlip, 1) && m.Duration > 0 {
				k := int(c.FirstFlip / m.Duration * float64(len(shades)))
				r = shades[min(max(k, 0), len(shades)-1)]
			}
			// Two columns per cell keep the map roughly square.
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "θ1: [%.3f, %.3f]  θ2: [%.3f, %.3f]  ", m.Theta1[0], m.Theta1[len(m.Theta1)-1], m.Theta2[0], m.Theta2[len(m.Theta2)-1])
	step := m.Duration / float64(len(shades))
	for k, s := range shades {
		fmt.Fprintf(&sb, "%c<%.3gs ", s, step*float64(k+1))
	}
	sb.WriteString("' '=none\n")
	return sb.String()
}
