package config

import (
	"math"
	"slices"

	"github.com/san-kum/dpsim/internal/physics"
)

// Preset is a named starting point for a run.
type Preset struct {
	Description string
	Config      *Config
}

func preset(desc string, dt float64, steps int, init InitStateConfig) Preset {
	return Preset{
		Description: desc,
		Config: &Config{
			Integrator: DefaultIntegrator,
			Dt:         dt,
			Steps:      steps,
			Params:     physics.DefaultParams(),
			InitState:  init,
			Poincare:   PoincareConfig{Wrap: true},
			LogLevel:   DefaultLogLevel,
		},
	}
}

var Presets = map[string]Preset{
	"gentle": preset("small-angle release, nearly linear", 0.01, 3000,
		InitStateConfig{Theta1: 0.3, Theta2: 0.3}),
	"normal_mode": preset("in-phase normal mode, θ2 = √2·θ1", 0.01, 3000,
		InitStateConfig{Theta1: 0.05, Theta2: math.Sqrt2 * 0.05}),
	"symmetric": preset("both arms horizontal", 0.005, 6000,
		InitStateConfig{Theta1: 1.5, Theta2: 1.5}),
	"chaos": preset("released near the top, strongly chaotic", 0.005, 12000,
		InitStateConfig{Theta1: 3.0, Theta2: 3.0}),
	"flip": preset("outer arm kicked hard enough to flip", 0.005, 6000,
		InitStateConfig{Theta1: 0.2, Theta2: 0.2, Omega2: 12}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Config.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
