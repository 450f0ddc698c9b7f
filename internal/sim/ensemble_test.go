package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
)

func TestEnsembleMatchesSequential(t *testing.T) {
	params := physics.DefaultParams()
	s := New(params, integrators.NewRK4())
	cfg := Config{Dt: 0.01, Steps: 300}

	inits := []dynamo.State{
		{0.1, 0.1, 0, 0},
		{1, 0.5, 0, 0},
		{2, 2, 0, 0},
		{3, -1, 0.5, 0},
		{0, 0, 0, 0},
	}

	got, err := NewEnsemble(s, 2).Run(context.Background(), inits, cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(got) != len(inits) {
		t.Fatalf("expected %d trajectories, got %d", len(inits), len(got))
	}

	for i, x0 := range inits {
		want, err := s.Run(context.Background(), x0, cfg)
		if err != nil {
			t.Fatalf("sequential run %d: %v", i, err)
		}
		for j := range want.Final() {
			if got[i].Final()[j] != want.Final()[j] {
				t.Errorf("trajectory %d component %d: ensemble %v, sequential %v", i, j, got[i].Final()[j], want.Final()[j])
			}
		}
	}
}

func TestEnsembleFirstErrorWins(t *testing.T) {
	s := New(physics.DefaultParams(), &failingIntegrator{failAt: 0})
	inits := []dynamo.State{{1, 0, 0, 0}, {2, 0, 0, 0}}

	_, err := NewEnsemble(s, 0).Run(context.Background(), inits, Config{Dt: 0.1, Steps: 10})
	if !errors.Is(err, dynamo.ErrSingular) {
		t.Errorf("expected ErrSingular, got %v", err)
	}
}

func TestEnsembleEmpty(t *testing.T) {
	s := New(physics.DefaultParams(), integrators.NewEuler())
	got, err := NewEnsemble(s, 4).Run(context.Background(), nil, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no trajectories, got %d", len(got))
	}
}
