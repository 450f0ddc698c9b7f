package viz

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrUnsupportedFormat is returned for image extensions other than png,
// svg and pdf.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Default image size.
const (
	ImageWidth  = 6 * vg.Inch
	ImageHeight = 4 * vg.Inch
)

// Format returns the image format implied by path's extension.
func Format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf":
		return ext, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// xys copies the finite points of xs/ys; gonum/plot rejects NaN and Inf.
func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if finite(xs[i]) && finite(ys[i]) {
			pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
		}
	}
	return pts
}

func addLine(p *plot.Plot, name string, i int, xs, ys []float64) error {
	l, err := plotter.NewLine(xys(xs, ys))
	if err != nil {
		return fmt.Errorf("line %s: %w", name, err)
	}
	l.LineStyle.Width = vg.Points(1)
	l.LineStyle.Color = plotutil.Color(i)
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}

// PathPlot draws the x-y path of both bobs with the pivot marked.
func PathPlot(tr *sim.Trajectory) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Double pendulum path (%s, dt=%g)", tr.Integrator, tr.Dt)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	pos := tr.Positions()
	if err := addLine(p, "bob 1", 0, pos.X1, pos.Y1); err != nil {
		return nil, err
	}
	if err := addLine(p, "bob 2", 1, pos.X2, pos.Y2); err != nil {
		return nil, err
	}

	pivot, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return nil, err
	}
	pivot.GlyphStyle.Shape = draw.CrossGlyph{}
	pivot.GlyphStyle.Radius = vg.Points(4)
	pivot.GlyphStyle.Color = color.Black
	p.Add(pivot)
	p.Legend.Add("pivot", pivot)

	r := tr.Params.Reach() * 1.05
	p.X.Min, p.X.Max = -r, r
	p.Y.Min, p.Y.Max = -r, r
	return p, nil
}

// TimeSeriesPlot draws the named series of tr against t.
func TimeSeriesPlot(tr *sim.Trajectory, names []string) (*plot.Plot, error) {
	if len(names) == 0 {
		names = []string{"x1", "y1", "x2", "y2"}
	}
	p := plot.New()
	p.Title.Text = "Time series"
	p.X.Label.Text = "t"
	p.Add(plotter.NewGrid())
	for i, n := range names {
		s, err := SeriesByName(tr, n)
		if err != nil {
			return nil, err
		}
		if err := addLine(p, n, i, tr.Times, s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// PoincarePlot scatters the (θ2, ω2) section.
func PoincarePlot(cs []analysis.Crossing) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Poincaré section (θ1 = 0 mod 2π, ω1 > 0)"
	p.X.Label.Text = "θ2"
	p.Y.Label.Text = "ω2"
	p.Add(plotter.NewGrid())

	th, om := analysis.SectionPoints(cs)
	if len(th) == 0 {
		p.X.Min, p.X.Max = -math.Pi, math.Pi
		p.Y.Min, p.Y.Max = -1, 1
		return p, nil
	}
	s, err := plotter.NewScatter(xys(th, om))
	if err != nil {
		return nil, fmt.Errorf("section scatter: %w", err)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.GlyphStyle.Color = plotutil.Color(0)
	p.Add(s)
	return p, nil
}

// EnergyPlot draws E(t).
func EnergyPlot(tr *sim.Trajectory) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Total energy (%s, dt=%g)", tr.Integrator, tr.Dt)
	p.X.Label.Text = "t"
	p.Y.Label.Text = "E"
	p.Add(plotter.NewGrid())
	if err := addLine(p, "", 0, tr.Times, tr.Energies()); err != nil {
		return nil, err
	}
	return p, nil
}

// SavePlot writes p to path in the format given by its extension.
func SavePlot(p *plot.Plot, path string, w, h vg.Length) error {
	if _, err := Format(path); err != nil {
		return err
	}
	return p.Save(w, h, path)
}

// WritePlot encodes p to w in format.
func WritePlot(w io.Writer, p *plot.Plot, format string, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// RenderPath writes the path image to path.
func RenderPath(tr *sim.Trajectory, path string) error {
	p, err := PathPlot(tr)
	if err != nil {
		return err
	}
	return SavePlot(p, path, ImageHeight, ImageHeight)
}

// RenderTimeSeries writes x1, y1, x2, y2 (or names) against t to path.
func RenderTimeSeries(tr *sim.Trajectory, path string, names ...string) error {
	p, err := TimeSeriesPlot(tr, names)
	if err != nil {
		return err
	}
	return SavePlot(p, path, ImageWidth, ImageHeight)
}

// RenderPoincare writes the section scatter to path.
func RenderPoincare(cs []analysis.Crossing, path string) error {
	p, err := PoincarePlot(cs)
	if err != nil {
		return err
	}
	return SavePlot(p, path, ImageWidth, ImageHeight)
}

// RenderEnergy writes E(t) to path.
func RenderEnergy(tr *sim.Trajectory, path string) error {
	p, err := EnergyPlot(tr)
	if err != nil {
		return err
	}
	return SavePlot(p, path, ImageWidth, ImageHeight)
}
