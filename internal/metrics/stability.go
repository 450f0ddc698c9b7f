package metrics

import (
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// Stability is the fraction of samples whose angular velocities stay below
// threshold and finite. A run that blows up numerically scores near 0.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnStep(step int, t float64, x dynamo.State) {
	s.samples++
	for _, val := range x[dynamo.Omega1:] {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
