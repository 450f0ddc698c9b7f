package sim

import (
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

// Config controls a single fixed-step run.
type Config struct {
	Dt    float64
	Steps int
	// ValidateState stops the run at the first NaN/Inf state. Off by
	// default: non-finite values propagate like any other number.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:    0.01,
		Steps: 1000,
	}
}

// Trajectory is the read-only product of a run: Steps+1 samples at times
// i·Dt, the first being the initial state.
type Trajectory struct {
	Times      []float64
	States     []dynamo.State
	Params     physics.Params
	Integrator string
	Dt         float64
	Steps      int
}

// Positions holds the Cartesian series of both bobs.
type Positions struct {
	X1, Y1, X2, Y2 []float64
}

func (tr *Trajectory) Len() int { return len(tr.States) }

// Duration is the time of the last sample.
func (tr *Trajectory) Duration() float64 {
	if len(tr.Times) == 0 {
		return 0
	}
	return tr.Times[len(tr.Times)-1]
}

func (tr *Trajectory) Initial() dynamo.State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[0]
}

func (tr *Trajectory) Final() dynamo.State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Component extracts one state variable as a time series.
func (tr *Trajectory) Component(idx int) []float64 {
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		if idx < len(s) {
			out[i] = s[idx]
		}
	}
	return out
}

func (tr *Trajectory) Theta1() []float64 { return tr.Component(dynamo.Theta1) }
func (tr *Trajectory) Theta2() []float64 { return tr.Component(dynamo.Theta2) }
func (tr *Trajectory) Omega1() []float64 { return tr.Component(dynamo.Omega1) }
func (tr *Trajectory) Omega2() []float64 { return tr.Component(dynamo.Omega2) }

// Positions converts every sample to bob coordinates.
func (tr *Trajectory) Positions() Positions {
	n := len(tr.States)
	pos := Positions{
		X1: make([]float64, n),
		Y1: make([]float64, n),
		X2: make([]float64, n),
		Y2: make([]float64, n),
	}
	for i, s := range tr.States {
		pos.X1[i], pos.Y1[i], pos.X2[i], pos.Y2[i] = tr.Params.Positions(s)
	}
	return pos
}

// Energies evaluates the total energy at every sample.
func (tr *Trajectory) Energies() []float64 {
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = tr.Params.Energy(s)
	}
	return out
}

// Slice returns the samples in [from, len) sharing the underlying storage.
func (tr *Trajectory) Slice(from int) *Trajectory {
	if from < 0 {
		from = 0
	}
	if from > len(tr.States) {
		from = len(tr.States)
	}
	c := *tr
	c.Times = tr.Times[from:]
	c.States = tr.States[from:]
	return &c
}
