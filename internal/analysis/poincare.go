package analysis

import (
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/sim"
)

const twoPi = 2 * math.Pi

// Crossing is one point of the section θ1 = 2πn with ω1 > 0, located by
// linear interpolation between samples Index and Index+1.
type Crossing struct {
	Time    float64
	Theta2  float64
	Omega2  float64
	Omega1  float64
	Index   int
	Winding int
}

type SectionOptions struct {
	// Skip drops the first Skip samples as transient.
	Skip int
	// Wrap maps θ2 into [-π, π).
	Wrap bool
}

func DefaultSectionOptions() SectionOptions {
	return SectionOptions{Wrap: true}
}

// PoincareSection returns the crossings of tr in chronological order. A
// single step that sweeps over several multiples of 2π yields one crossing
// per multiple.
//
// Each step covers θ1 in (a, b] when rising, so a sample lying exactly on
// a multiple of 2π belongs to the step that arrives at it. The initial
// sample (the first one kept after Skip) is never a crossing.
func PoincareSection(tr *sim.Trajectory, opts SectionOptions) ([]Crossing, error) {
	if tr == nil {
		return nil, nil
	}

	var out []Crossing
	start := max(opts.Skip, 0)

	for i := start; i+1 < len(tr.States); i++ {
		a, b := tr.States[i], tr.States[i+1]
		lo, hi := a[dynamo.Theta1], b[dynamo.Theta1]

		for _, n := range windings(lo, hi) {
			c, err := interpolateCrossing(tr, i, n)
			if err != nil {
				return out, err
			}
			if !(c.Omega1 > 0) {
				continue
			}
			if opts.Wrap {
				c.Theta2 = WrapAngle(c.Theta2)
			}
			out = append(out, c)
		}
	}

	return out, nil
}

// windings lists the n with 2πn in (a, b] when rising or [b, a) when
// falling, ordered along the direction of travel.
func windings(a, b float64) []int {
	if a == b || math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return nil
	}

	var ns []int
	if a < b {
		for n := int(math.Floor(a/twoPi)) + 1; twoPi*float64(n) <= b; n++ {
			if twoPi*float64(n) > a {
				ns = append(ns, n)
			}
		}
		return ns
	}

	for n := int(math.Ceil(a/twoPi)) - 1; twoPi*float64(n) >= b; n-- {
		if twoPi*float64(n) < a {
			ns = append(ns, n)
		}
	}
	return ns
}

func interpolateCrossing(tr *sim.Trajectory, i, n int) (Crossing, error) {
	a, b := tr.States[i], tr.States[i+1]
	target := twoPi * float64(n)
	x0 := a[dynamo.Theta1] - target
	x1 := b[dynamo.Theta1] - target

	at := func(y0, y1 float64) (float64, error) { return LinInterp(x0, y0, x1, y1) }

	c := Crossing{Index: i, Winding: n}
	var err error
	if c.Time, err = at(tr.Times[i], tr.Times[i+1]); err != nil {
		return c, err
	}
	if c.Theta2, err = at(a[dynamo.Theta2], b[dynamo.Theta2]); err != nil {
		return c, err
	}
	if c.Omega1, err = at(a[dynamo.Omega1], b[dynamo.Omega1]); err != nil {
		return c, err
	}
	if c.Omega2, err = at(a[dynamo.Omega2], b[dynamo.Omega2]); err != nil {
		return c, err
	}
	return c, nil
}

// SectionPoints splits crossings into (θ2, ω2) coordinate slices.
func SectionPoints(cs []Crossing) (theta2, omega2 []float64) {
	theta2 = make([]float64, len(cs))
	omega2 = make([]float64, len(cs))
	for i, c := range cs {
		theta2[i] = c.Theta2
		omega2[i] = c.Omega2
	}
	return theta2, omega2
}

// WrapAngle maps an angle into [-π, π).
func WrapAngle(theta float64) float64 {
	w := theta - twoPi*math.Floor((theta+math.Pi)/twoPi)
	if w >= math.Pi {
		w -= twoPi
	}
	return w
}

// UpwardZeroCrossings counts indices where the series goes from negative to
// non-negative.
func UpwardZeroCrossings(series []float64) int {
	count := 0
	for i := 0; i+1 < len(series); i++ {
		if series[i] < 0 && series[i+1] >= 0 {
			count++
		}
	}
	return count
}
