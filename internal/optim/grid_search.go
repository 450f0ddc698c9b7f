// Package optim searches grids of initial conditions for the fastest flip
// of the outer arm.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/metrics"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

// Cell is the outcome of one released-from-rest initial condition.
type Cell struct {
	Theta1, Theta2 float64
	// FirstFlip is the time θ2 first passes over the top, +Inf if it never
	// does within the run.
	FirstFlip float64
	Flips     int
	// Skipped is set when the energy is too low for the outer arm to reach
	// the top, so the cell was not integrated.
	Skipped bool
}

// FlipMap holds Cells[i][j] for Theta2[i] and Theta1[j].
type FlipMap struct {
	Theta1, Theta2 []float64
	Cells          [][]Cell
	Duration       float64
}

// GridSearch integrates every (θ1, θ2) pair released from rest and records
// when the outer arm first flips.
type GridSearch struct {
	params     physics.Params
	integrator dynamo.Integrator
	workers    int
}

func NewGridSearch(params physics.Params, integ dynamo.Integrator, workers int) *GridSearch {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &GridSearch{params: params, integrator: integ, workers: workers}
}

// Linspace returns n evenly spaced values from from to to inclusive.
func Linspace(from, to float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{from}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = from + (to-from)*float64(i)/float64(n-1)
	}
	return out
}

// flipThreshold is the lowest potential energy with the outer bob over the
// top, reached at θ1 = 0, θ2 = π.
func (g *GridSearch) flipThreshold() float64 {
	return g.params.Potential(dynamo.NewState(0, math.Pi, 0, 0))
}

// Search fills a FlipMap over theta1 × theta2.
func (g *GridSearch) Search(ctx context.Context, theta1, theta2 []float64, cfg sim.Config) (*FlipMap, error) {
	if len(theta1) == 0 || len(theta2) == 0 {
		return nil, fmt.Errorf("%w: empty grid", dynamo.ErrInvalidConfig)
	}

	m := &FlipMap{
		Theta1:   theta1,
		Theta2:   theta2,
		Cells:    make([][]Cell, len(theta2)),
		Duration: float64(cfg.Steps) * cfg.Dt,
	}
	threshold := g.flipThreshold()

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, th2 := range theta2 {
		th2 := th2
		m.Cells[i] = make([]Cell, len(theta1))
		for j, th1 := range theta1 {
			th1 := th1
			cell := &m.Cells[i][j]
			*cell = Cell{Theta1: th1, Theta2: th2, FirstFlip: math.Inf(1)}

			x0 := dynamo.NewState(th1, th2, 0, 0)
			if g.params.Energy(x0) < threshold {
				cell.Skipped = true
				continue
			}

			eg.Go(func() error {
				s := sim.New(g.params, g.integrator)
				flips := metrics.NewFlips(dynamo.Theta2)
				s.AddObserver(flips)
				if _, err := s.Run(ectx, x0, cfg); err != nil {
					return fmt.Errorf("θ1=%g θ2=%g: %w", th1, th2, err)
				}
				cell.FirstFlip = flips.FirstFlip()
				cell.Flips = int(flips.Value())
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// Fastest returns the cell with the earliest flip, and false if no cell
// flipped.
func (m *FlipMap) Fastest() (Cell, bool) {
	best := Cell{FirstFlip: math.Inf(1)}
	found := false
	for _, row := range m.Cells {
		for _, c := range row {
			if c.FirstFlip < best.FirstFlip {
				best, found = c, true
			}
		}
	}
	return best, found
}

// Flipped counts the cells that flipped within the run.
func (m *FlipMap) Flipped() int {
	n := 0
	for _, row := range m.Cells {
		for _, c := range row {
			if !math.IsInf(c.FirstFlip, 1) {
				n++
			}
		}
	}
	return n
}
