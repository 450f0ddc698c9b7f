package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dpsim/internal/sim"
)

// EnergySummary describes how well a run conserved mechanical energy.
// Drift values are |E - E0| / |E0|; when E0 is zero they are absolute.
type EnergySummary struct {
	Initial    float64
	Final      float64
	Min        float64
	Max        float64
	MaxDrift   float64
	FinalDrift float64
}

func EnergyReport(tr *sim.Trajectory) EnergySummary {
	e := tr.Energies()
	if len(e) == 0 {
		return EnergySummary{}
	}

	e0 := e[0]
	scale := math.Abs(e0)
	if scale == 0 {
		scale = 1
	}

	drift := make([]float64, len(e))
	copy(drift, e)
	floats.AddConst(-e0, drift)
	for i := range drift {
		drift[i] = math.Abs(drift[i])
	}
	floats.Scale(1/scale, drift)

	return EnergySummary{
		Initial:    e0,
		Final:      e[len(e)-1],
		Min:        floats.Min(e),
		Max:        floats.Max(e),
		MaxDrift:   floats.Max(drift),
		FinalDrift: drift[len(drift)-1],
	}
}

// RelativeDrift returns |E(x) - e0| / |e0|, or the absolute change if e0 is 0.
func RelativeDrift(e0, e float64) float64 {
	d := math.Abs(e - e0)
	if e0 == 0 {
		return d
	}
	return d / math.Abs(e0)
}
