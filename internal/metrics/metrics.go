package metrics

import "github.com/san-kum/dpsim/internal/dynamo"

// Metric is an observer that reduces a run to a single number.
type Metric interface {
	dynamo.Observer
	Name() string
	Value() float64
	Reset()
}

// Set fans samples out to several metrics.
type Set []Metric

func (s Set) OnStep(step int, t float64, x dynamo.State) {
	for _, m := range s {
		m.OnStep(step, t, x)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Values returns each metric's current value keyed by name.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}
