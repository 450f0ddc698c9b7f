package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.Integrator)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Params != physics.DefaultParams() {
		t.Errorf("expected default params, got %v", cfg.Params)
	}
	if cfg.Params.G != 9.8 {
		t.Errorf("expected g = 9.8, got %v", cfg.Params.G)
	}
	if !cfg.Poincare.Wrap {
		t.Error("expected wrap on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	doc := `
integrator: euler
steps: 200
params:
  m2: 2.5
init_state:
  theta1: 1.25
  omega2: -0.5
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Integrator != "euler" || cfg.Steps != 200 {
		t.Errorf("unexpected integrator/steps: %s %d", cfg.Integrator, cfg.Steps)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("expected default dt, got %v", cfg.Dt)
	}
	if cfg.Params.M2 != 2.5 || cfg.Params.M1 != 1 || cfg.Params.G != 9.8 {
		t.Errorf("unexpected params: %+v", cfg.Params)
	}
	want := dynamo.State{1.25, DefaultTheta, 0, -0.5}
	got := cfg.GetInitState()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("init state component %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("chaos")
	cfg.Poincare.Skip = 100

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("dt: [not, a, number]"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"unknown integrator", func(c *Config) { c.Integrator = "rk45" }, dynamo.ErrInvalidConfig},
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrInvalidConfig},
		{"negative steps", func(c *Config) { c.Steps = -1 }, dynamo.ErrInvalidConfig},
		{"negative skip", func(c *Config) { c.Poincare.Skip = -3 }, dynamo.ErrInvalidConfig},
		{"heun alias", func(c *Config) { c.Integrator = "Heun" }, nil},
		{"zero steps", func(c *Config) { c.Steps = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gentle")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.Theta1 != 0.3 {
		t.Errorf("expected theta1 0.3, got %f", cfg.InitState.Theta1)
	}

	cfg.InitState.Theta1 = 9
	if GetPreset("gentle").InitState.Theta1 != 0.3 {
		t.Error("preset mutated through returned copy")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"chaos", "flip", "gentle", "normal_mode", "symmetric"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %s at %d, got %s", want[i], i, names[i])
		}
	}

	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestDuration(t *testing.T) {
	cfg := &Config{Dt: 0.01, Steps: 250}
	if d := cfg.Duration(); d != 2.5 {
		t.Errorf("expected 2.5, got %v", d)
	}
}

func TestOverlayKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("dt: 0.002\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("flip")
	cfg, err := Overlay(path, base)
	if err != nil {
		t.Fatalf("overlay failed: %v", err)
	}
	if cfg.Dt != 0.002 {
		t.Errorf("expected dt from file, got %v", cfg.Dt)
	}
	if cfg.InitState.Omega2 != 12 || cfg.Steps != base.Steps {
		t.Errorf("expected preset values to survive, got %+v", cfg)
	}
	if base.Dt != 0.005 {
		t.Errorf("base was modified: dt=%v", base.Dt)
	}
}
