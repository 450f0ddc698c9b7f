package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

func TestEnergyDriftObserver(t *testing.T) {
	params := physics.DefaultParams()
	drift := NewEnergyDrift(params)

	s := sim.New(params, integrators.NewEuler())
	s.AddObserver(drift)

	x0 := dynamo.State{1, 0.5, 0, 0}
	if _, err := s.Run(context.Background(), x0, sim.Config{Dt: 0.01, Steps: 200}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if math.Abs(drift.Initial()-params.Energy(x0)) > 1e-12 {
		t.Errorf("expected initial energy %f, got %f", params.Energy(x0), drift.Initial())
	}
	if drift.Value() <= 0 {
		t.Error("expected euler to drift")
	}

	drift.Reset()
	if drift.Value() != 0 || drift.Initial() != 0 {
		t.Error("expected zero drift after reset")
	}
}

type speedEnergy struct{}

func (speedEnergy) Energy(x dynamo.State) float64 { return x[dynamo.Omega1] }

func TestEnergyDriftZeroInitialEnergy(t *testing.T) {
	drift := NewEnergyDrift(speedEnergy{})

	drift.OnStep(0, 0, dynamo.State{0, 0, 0, 0})
	drift.OnStep(1, 0.1, dynamo.State{0, 0, -0.25, 0})
	drift.OnStep(2, 0.2, dynamo.State{0, 0, 0.1, 0})

	if math.Abs(drift.Value()-0.25) > 1e-12 {
		t.Errorf("expected absolute drift 0.25, got %f", drift.Value())
	}
	if drift.Current() != 0.1 {
		t.Errorf("expected current energy 0.1, got %f", drift.Current())
	}
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	s.OnStep(0, 0, dynamo.State{100, 100, 1, 1})
	s.OnStep(1, 0.1, dynamo.State{0, 0, 20, 0})
	s.OnStep(2, 0.2, dynamo.State{0, 0, math.NaN(), 0})
	s.OnStep(3, 0.3, dynamo.State{0, 0, 0, -5})

	if got := s.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", got)
	}

	s.Reset()
	if s.Value() != 1 {
		t.Errorf("expected 1 after reset, got %f", s.Value())
	}
}

func TestFlips(t *testing.T) {
	f := NewFlips(dynamo.Theta2)
	series := []float64{0, 2, 3.2, 4, 7, 9.5, 3}

	for i, th := range series {
		f.OnStep(i, float64(i), dynamo.State{0, th, 0, 0})
	}

	// turns: 0, 0, 1, 1, 1, 2, 0
	if f.Value() != 4 {
		t.Errorf("expected 4 flips, got %v", f.Value())
	}
	if f.FirstFlip() != 2 {
		t.Errorf("expected first flip at t=2, got %v", f.FirstFlip())
	}
	if f.Name() != "flips_theta2" {
		t.Errorf("unexpected name %q", f.Name())
	}
}

func TestSetValues(t *testing.T) {
	params := physics.DefaultParams()
	set := Set{NewEnergyDrift(params), NewStability(50), NewFlips(dynamo.Theta1)}

	s := sim.New(params, integrators.NewRK4())
	s.AddObserver(set)
	if _, err := s.Run(context.Background(), dynamo.State{0.2, 0.1, 0, 0}, sim.Config{Dt: 0.01, Steps: 100}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	v := set.Values()
	if len(v) != 3 {
		t.Fatalf("expected 3 values, got %v", v)
	}
	if v["stability"] != 1 {
		t.Errorf("expected stable small-angle run, got %v", v["stability"])
	}
	if v["flips_theta1"] != 0 {
		t.Errorf("expected no flips, got %v", v["flips_theta1"])
	}
}
