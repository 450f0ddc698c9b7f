package sim

import (
	"math"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

func sampleTrajectory() *Trajectory {
	return &Trajectory{
		Times: []float64{0, 0.5, 1},
		States: []dynamo.State{
			{0, 0, 1, 2},
			{math.Pi / 2, 0, 3, 4},
			{math.Pi, math.Pi / 2, 5, 6},
		},
		Params:     physics.DefaultParams(),
		Integrator: "rk4",
		Dt:         0.5,
		Steps:      2,
	}
}

func TestTrajectoryAccessors(t *testing.T) {
	tr := sampleTrajectory()

	if tr.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tr.Len())
	}
	if tr.Duration() != 1 {
		t.Errorf("Duration() = %v, want 1", tr.Duration())
	}
	if tr.Initial()[dynamo.Omega1] != 1 || tr.Final()[dynamo.Omega2] != 6 {
		t.Errorf("unexpected endpoints %v %v", tr.Initial(), tr.Final())
	}

	tests := []struct {
		name string
		got  []float64
		want []float64
	}{
		{"theta1", tr.Theta1(), []float64{0, math.Pi / 2, math.Pi}},
		{"theta2", tr.Theta2(), []float64{0, 0, math.Pi / 2}},
		{"omega1", tr.Omega1(), []float64{1, 3, 5}},
		{"omega2", tr.Omega2(), []float64{2, 4, 6}},
	}
	for _, tt := range tests {
		for i := range tt.want {
			if tt.got[i] != tt.want[i] {
				t.Errorf("%s[%d] = %v, want %v", tt.name, i, tt.got[i], tt.want[i])
			}
		}
	}
}

func TestTrajectoryPositions(t *testing.T) {
	pos := sampleTrajectory().Positions()

	// Hanging straight down.
	if pos.X1[0] != 0 || pos.Y1[0] != -1 || pos.X2[0] != 0 || pos.Y2[0] != -2 {
		t.Errorf("sample 0: (%v,%v) (%v,%v)", pos.X1[0], pos.Y1[0], pos.X2[0], pos.Y2[0])
	}
	// Inner arm horizontal, outer arm hanging.
	if math.Abs(pos.X1[1]-1) > 1e-12 || math.Abs(pos.Y1[1]) > 1e-12 || math.Abs(pos.Y2[1]+1) > 1e-12 {
		t.Errorf("sample 1: (%v,%v) (%v,%v)", pos.X1[1], pos.Y1[1], pos.X2[1], pos.Y2[1])
	}
}

func TestTrajectoryEnergies(t *testing.T) {
	tr := sampleTrajectory()
	e := tr.Energies()
	for i, x := range tr.States {
		if e[i] != tr.Params.Energy(x) {
			t.Errorf("energy %d = %v, want %v", i, e[i], tr.Params.Energy(x))
		}
	}
}

func TestTrajectorySlice(t *testing.T) {
	tr := sampleTrajectory()

	s := tr.Slice(1)
	if s.Len() != 2 || s.Times[0] != 0.5 || s.Integrator != "rk4" {
		t.Errorf("unexpected slice %+v", s)
	}
	if tr.Slice(-3).Len() != 3 {
		t.Error("negative start should clamp to 0")
	}
	if tr.Slice(10).Len() != 0 {
		t.Error("start past the end should give an empty trajectory")
	}
}
