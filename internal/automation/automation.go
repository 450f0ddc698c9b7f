// Package automation runs scripted batches of double pendulum runs
// described in YAML.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/experiment"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Runs        []Run  `yaml:"runs"`
}

// Run is one entry of a scenario. Config holds any subset of the run
// config keys and is laid over the preset, or over the defaults when no
// preset is named.
type Run struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// Outcome pairs a scenario run with its result.
type Outcome struct {
	Name   string
	Config *config.Config
	Result *experiment.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}
	return &scenario, nil
}

// Resolve builds the config of run i.
func (s *Scenario) Resolve(i int) (*config.Config, error) {
	r := s.Runs[i]
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		if cfg = config.GetPreset(r.Preset); cfg == nil {
			return nil, fmt.Errorf("run %d: unknown preset %s", i+1, r.Preset)
		}
	}
	if !r.Config.IsZero() {
		if err := r.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("run %d: %w", i+1, err)
	}
	return cfg, nil
}

// RunName is the label of run i: its name, its preset or its position.
func (s *Scenario) RunName(i int) string {
	r := s.Runs[i]
	switch {
	case r.Name != "":
		return r.Name
	case r.Preset != "":
		return r.Preset
	}
	return fmt.Sprintf("%s#%d", s.Name, i+1)
}

// RunScenario executes all runs in order. done, when non-nil, is called
// after each run; an error from it stops the scenario. Outcomes of the runs
// completed so far are returned with any error.
func RunScenario(ctx context.Context, scenario *Scenario, done func(Outcome) error) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Runs))

	for i := range scenario.Runs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		cfg, err := scenario.Resolve(i)
		if err != nil {
			return outcomes, err
		}

		exp, err := experiment.New(cfg)
		if err != nil {
			return outcomes, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d (%s): %w", i+1, scenario.RunName(i), err)
		}

		o := Outcome{Name: scenario.RunName(i), Config: cfg, Result: result}
		outcomes = append(outcomes, o)
		if done != nil {
			if err := done(o); err != nil {
				return outcomes, err
			}
		}
	}

	return outcomes, nil
}
