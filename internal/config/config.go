package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

const (
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.01
	DefaultSteps      = 5000
	DefaultTheta      = 0.5
	DefaultLogLevel   = "info"
)

type Config struct {
	Integrator string          `yaml:"integrator" json:"integrator"`
	Dt         float64         `yaml:"dt" json:"dt"`
	Steps      int             `yaml:"steps" json:"steps"`
	Params     physics.Params  `yaml:"params" json:"params"`
	InitState  InitStateConfig `yaml:"init_state" json:"init_state"`
	Poincare   PoincareConfig  `yaml:"poincare" json:"poincare"`
	LogLevel   string          `yaml:"log_level" json:"log_level"`
}

type InitStateConfig struct {
	Theta1 float64 `yaml:"theta1" json:"theta1"`
	Theta2 float64 `yaml:"theta2" json:"theta2"`
	Omega1 float64 `yaml:"omega1" json:"omega1"`
	Omega2 float64 `yaml:"omega2" json:"omega2"`
}

type PoincareConfig struct {
	Skip int  `yaml:"skip" json:"skip"`
	Wrap bool `yaml:"wrap" json:"wrap"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Steps:      DefaultSteps,
		Params:     physics.DefaultParams(),
		InitState: InitStateConfig{
			Theta1: DefaultTheta,
			Theta2: DefaultTheta,
		},
		Poincare: PoincareConfig{Wrap: true},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads a YAML file over a copy of base. Keys absent from the file
// keep base's values.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields a run cannot proceed without. Physical
// parameters are not range-checked.
func (c *Config) Validate() error {
	if _, err := integrators.Lookup(c.Integrator); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Steps)
	}
	if c.Poincare.Skip < 0 {
		return fmt.Errorf("%w: poincare skip must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Poincare.Skip)
	}
	if !c.GetInitState().IsValid() {
		return fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidState, c.GetInitState())
	}
	return nil
}

func (c *Config) GetInitState() dynamo.State {
	return dynamo.NewState(c.InitState.Theta1, c.InitState.Theta2, c.InitState.Omega1, c.InitState.Omega2)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{Dt: c.Dt, Steps: c.Steps}
}

// Duration is the simulated time span, Steps·Dt.
func (c *Config) Duration() float64 {
	return float64(c.Steps) * c.Dt
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
