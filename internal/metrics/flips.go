package metrics

import (
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// Flips counts how often one arm passes over the top, i.e. how often the
// angle crosses an odd multiple of π.
type Flips struct {
	name      string
	index     int
	count     int
	firstFlip float64
	lastTurn  float64
	samples   int
}

func NewFlips(index int) *Flips {
	name := "flips_theta1"
	if index == dynamo.Theta2 {
		name = "flips_theta2"
	}
	return &Flips{name: name, index: index, firstFlip: math.Inf(1)}
}

func (f *Flips) Name() string { return f.name }

func (f *Flips) OnStep(step int, t float64, x dynamo.State) {
	turn := math.Floor((x[f.index] + math.Pi) / (2 * math.Pi))
	if f.samples > 0 && turn != f.lastTurn && !math.IsNaN(turn) {
		f.count += int(math.Abs(turn - f.lastTurn))
		if math.IsInf(f.firstFlip, 1) {
			f.firstFlip = t
		}
	}
	f.lastTurn = turn
	f.samples++
}

func (f *Flips) Value() float64 { return float64(f.count) }

// FirstFlip is the time of the first flip, +Inf if none happened.
func (f *Flips) FirstFlip() float64 { return f.firstFlip }

func (f *Flips) Reset() {
	f.count = 0
	f.firstFlip = math.Inf(1)
	f.lastTurn = 0
	f.samples = 0
}
