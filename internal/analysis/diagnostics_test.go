package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

func TestEnergyReport(t *testing.T) {
	params := physics.DefaultParams()
	x0 := dynamo.State{1, 0.5, 0, 0}

	rk4, err := sim.Run(context.Background(), x0, params, integrators.NewRK4(), 0.001, 1000)
	if err != nil {
		t.Fatalf("rk4 run: %v", err)
	}
	euler, err := sim.Run(context.Background(), x0, params, integrators.NewEuler(), 0.001, 1000)
	if err != nil {
		t.Fatalf("euler run: %v", err)
	}

	r := EnergyReport(rk4)
	assert.InDelta(t, params.Energy(x0), r.Initial, 1e-12)
	if r.MaxDrift >= 0.01 {
		t.Errorf("rk4 drift %v exceeds 1%%", r.MaxDrift)
	}
	if r.Min > r.Initial || r.Max < r.Initial {
		t.Errorf("initial energy %v outside [%v, %v]", r.Initial, r.Min, r.Max)
	}
	if r.FinalDrift > r.MaxDrift {
		t.Errorf("final drift %v above max drift %v", r.FinalDrift, r.MaxDrift)
	}

	e := EnergyReport(euler)
	if e.MaxDrift <= r.MaxDrift {
		t.Errorf("expected euler drift %v above rk4 drift %v", e.MaxDrift, r.MaxDrift)
	}
}

func TestEnergyReportConstant(t *testing.T) {
	tr := &sim.Trajectory{
		Params: physics.DefaultParams(),
		Times:  []float64{0, 1, 2},
		States: []dynamo.State{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	}
	r := EnergyReport(tr)
	assert.Equal(t, 0.0, r.MaxDrift)
	assert.InDelta(t, params0Energy(), r.Initial, 1e-12)

	empty := EnergyReport(&sim.Trajectory{})
	assert.Equal(t, EnergySummary{}, empty)
}

func params0Energy() float64 {
	p := physics.DefaultParams()
	return p.Energy(dynamo.State{0, 0, 0, 0})
}

func TestRelativeDrift(t *testing.T) {
	assert.InDelta(t, 0.1, RelativeDrift(-10, -9), 1e-12)
	assert.InDelta(t, 0.5, RelativeDrift(0, 0.5), 1e-12)
}

func TestConvergenceOrder(t *testing.T) {
	params := physics.DefaultParams()
	x0 := dynamo.State{0.3, 0.2, 0, 0}

	tests := []struct {
		integ    dynamo.Integrator
		dt0      float64
		min, max float64
	}{
		{integrators.NewEuler(), 0.01, 0.8, 1.2},
		{integrators.NewRK2(), 0.01, 1.7, 2.3},
		{integrators.NewRK4(), 0.02, 3.5, 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.integ.Name(), func(t *testing.T) {
			res, err := ConvergenceOrder(context.Background(), params, x0, tt.integ, 1.0, HalvingSteps(tt.dt0, 3))
			if err != nil {
				t.Fatalf("convergence: %v", err)
			}
			if len(res.Orders) != 2 {
				t.Fatalf("expected 2 orders, got %d", len(res.Orders))
			}
			for i, p := range res.Orders {
				if p < tt.min || p > tt.max {
					t.Errorf("order %d = %.3f outside [%v, %v] (errors %v)", i, p, tt.min, tt.max, res.Errors)
				}
			}
		})
	}
}

func TestConvergenceOrderRejectsBadSteps(t *testing.T) {
	params := physics.DefaultParams()
	x0 := dynamo.State{0.3, 0.2, 0, 0}

	_, err := ConvergenceOrder(context.Background(), params, x0, integrators.NewRK4(), 1.0, []float64{0.1})
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for one step size, got %v", err)
	}

	_, err = ConvergenceOrder(context.Background(), params, x0, integrators.NewRK4(), 1.0, []float64{0.3, 0.15})
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for non-dividing dt, got %v", err)
	}
}

func TestHalvingSteps(t *testing.T) {
	assert.Equal(t, []float64{0.1, 0.05, 0.025}, HalvingSteps(0.1, 3))
}

func TestLyapunovExponent(t *testing.T) {
	params := physics.DefaultParams()
	rk4 := integrators.NewRK4()

	regular, err := LyapunovExponent(params, dynamo.State{0.1, 0.1, 0, 0}, rk4, 0.005, 10000, 1e-8)
	if err != nil {
		t.Fatalf("regular: %v", err)
	}
	chaotic, err := LyapunovExponent(params, dynamo.State{math.Pi / 2, math.Pi / 2, 0, 0}, rk4, 0.005, 10000, 1e-8)
	if err != nil {
		t.Fatalf("chaotic: %v", err)
	}

	if chaotic.Exponent <= 0.2 {
		t.Errorf("expected a clearly positive exponent for the chaotic release, got %v", chaotic.Exponent)
	}
	if chaotic.Exponent <= 3*regular.Exponent {
		t.Errorf("chaotic exponent %v not well above regular %v", chaotic.Exponent, regular.Exponent)
	}
	assert.InDelta(t, 1/chaotic.Exponent, chaotic.Time, 1e-12)
	assert.Equal(t, 10000, chaotic.Steps)
}

func TestLyapunovExponentInvalid(t *testing.T) {
	params := physics.DefaultParams()
	x0 := dynamo.State{1, 1, 0, 0}

	tests := []struct {
		name  string
		x0    dynamo.State
		dt    float64
		steps int
		d0    float64
		want  error
	}{
		{"zero perturbation", x0, 0.01, 10, 0, dynamo.ErrInvalidConfig},
		{"zero dt", x0, 0, 10, 1e-8, dynamo.ErrInvalidConfig},
		{"no steps", x0, 0.01, 0, 1e-8, dynamo.ErrInvalidConfig},
		{"short state", dynamo.State{1}, 0.01, 10, 1e-8, dynamo.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LyapunovExponent(params, tt.x0, integrators.NewRK4(), tt.dt, tt.steps, tt.d0)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDominantFrequency(t *testing.T) {
	const (
		dt = 0.01
		f  = 0.5
	)
	series := make([]float64, 4096)
	for i := range series {
		series[i] = 2 + math.Sin(2*math.Pi*f*float64(i)*dt)
	}

	got := DominantFrequency(series, dt)
	assert.InDelta(t, f, got, 1/(4096*dt))
}

func TestPowerSpectrumLength(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 1000))
	if len(ps) != 513 {
		t.Errorf("expected 513 bins after padding to 1024, got %d", len(ps))
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty series")
	}
	assert.Equal(t, 0.0, DominantFrequency(nil, 0.1))
}

func TestNextPow2(t *testing.T) {
	for in, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 1000: 1024, 1024: 1024} {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSectionSweep(t *testing.T) {
	s := sim.New(physics.DefaultParams(), integrators.NewRK4())
	cfg := sim.Config{Dt: 0.01, Steps: 1500}

	pts, err := SectionSweep(context.Background(), s, dynamo.State{0, 0, 0, 0}, dynamo.Theta1, 0.05, 0.15, 3, cfg, DefaultSectionOptions(), 2)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i, want := range []float64{0.05, 0.1, 0.15} {
		assert.InDelta(t, want, pts[i].Value, 1e-12)
		assert.InDelta(t, want, pts[i].Initial[dynamo.Theta1], 1e-12)
		if len(pts[i].Crossings) == 0 {
			t.Errorf("point %d: expected crossings", i)
		}
	}

	_, err = SectionSweep(context.Background(), s, dynamo.State{0, 0, 0, 0}, 7, 0, 1, 3, cfg, DefaultSectionOptions(), 2)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
