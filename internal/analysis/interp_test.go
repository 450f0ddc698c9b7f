package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinInterp(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           float64
	}{
		{"reference points", 1, 10, 3, 20, 5},
		{"bracketing zero", -1, 0, 1, 2, 1},
		{"negative slope", -2, 4, 2, 0, 2},
		{"zero at left end", 0, 7, 1, 9, 7},
		{"constant", -0.5, 3, 0.5, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LinInterp(tt.x0, tt.y0, tt.x1, tt.y1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestLinInterpDegenerate(t *testing.T) {
	_, err := LinInterp(2, 1, 2, 5)
	if !errors.Is(err, ErrDegenerateInterval) {
		t.Errorf("expected ErrDegenerateInterval, got %v", err)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{-0.5, -0.5},
		{math.Pi, -math.Pi},
		{-math.Pi, -math.Pi},
		{3 * math.Pi, -math.Pi},
		{2*math.Pi + 0.5, 0.5},
		{-2*math.Pi - 0.5, -0.5},
		{10.0, 10.0 - 4*math.Pi},
	}

	for _, tt := range tests {
		got := WrapAngle(tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, "WrapAngle(%v)", tt.in)
		if got < -math.Pi || got >= math.Pi {
			t.Errorf("WrapAngle(%v) = %v outside [-π, π)", tt.in, got)
		}
	}
}

func TestUpwardZeroCrossings(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   int
	}{
		{"empty", nil, 0},
		{"single", []float64{-1}, 0},
		{"rising", []float64{-1, 1}, 1},
		{"falling", []float64{1, -1}, 0},
		{"touch zero", []float64{-1, 0, -1, 0}, 2},
		{"oscillation", []float64{1, -1, 1, -1, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpwardZeroCrossings(tt.series); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
