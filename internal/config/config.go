// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range bounds an adjustable parameter and the step used by the UI controls.
type Range struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Clamp forces v into [Min, Max].
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// LabConfig is the root configuration: default parameters, UI ranges, and
// rendering/Monte Carlo knobs.
type LabConfig struct {
	ArrivalRate    float64 `yaml:"arrival_rate"`
	JumpRate       float64 `yaml:"jump_rate"`
	Horizon        float64 `yaml:"horizon"`
	Simulations    int     `yaml:"simulations"`
	Bins           int     `yaml:"bins"`
	MaxSimulations int     `yaml:"max_simulations"`
	SimulationStep int     `yaml:"simulation_step"`
	ArrivalRange   Range   `yaml:"arrival_range"`
	JumpRange      Range   `yaml:"jump_range"`
	HorizonRange   Range   `yaml:"horizon_range"`
}

// Default returns the built-in configuration used when no file is given:
// lambda in [0.1,5] step 0.1, mu in [0.1,2] step 0.05, T in [10,50] step 1,
// 5000 Monte Carlo draws over 50 bins.
func Default() *LabConfig {
	return &LabConfig{
		ArrivalRate:    2.0,
		JumpRate:       0.5,
		Horizon:        20,
		Simulations:    5000,
		Bins:           50,
		MaxSimulations: 200000,
		SimulationStep: 1000,
		ArrivalRange:   Range{Min: 0.1, Max: 5, Step: 0.1},
		JumpRange:      Range{Min: 0.1, Max: 2, Step: 0.05},
		HorizonRange:   Range{Min: 10, Max: 50, Step: 1},
	}
}

// Load loads YAML config and validates it against a CUE schema. Zero-valued
// fields fall back to the built-in defaults.
func Load(configPath, cueSchemaPath string) (*LabConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency the CUE schema cannot express
// against the defaults-merged result.
func (c *LabConfig) Validate() error {
	if c.ArrivalRate <= 0 || c.JumpRate <= 0 || c.Horizon <= 0 {
		return fmt.Errorf("rates and horizon must be positive: lambda=%g mu=%g horizon=%g",
			c.ArrivalRate, c.JumpRate, c.Horizon)
	}
	if c.Simulations < 1 {
		return fmt.Errorf("simulations must be at least 1, got %d", c.Simulations)
	}
	if c.Bins < 1 {
		return fmt.Errorf("bins must be at least 1, got %d", c.Bins)
	}
	if c.MaxSimulations > 0 && c.Simulations > c.MaxSimulations {
		return fmt.Errorf("simulations %d exceeds cap %d", c.Simulations, c.MaxSimulations)
	}
	for _, r := range []struct {
		name string
		r    Range
	}{
		{"arrival_range", c.ArrivalRange},
		{"jump_range", c.JumpRange},
		{"horizon_range", c.HorizonRange},
	} {
		if r.r.Min <= 0 || r.r.Max < r.r.Min || r.r.Step <= 0 {
			return fmt.Errorf("invalid %s: %+v", r.name, r.r)
		}
	}
	return nil
}
