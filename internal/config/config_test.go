package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lab.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeTempConfig(t, `
arrival_rate: 1.5
jump_rate: 0.8
horizon: 30
simulations: 10000
`)
	cfg, err := Load(path, "../../schemas/lab.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ArrivalRate != 1.5 || cfg.JumpRate != 0.8 || cfg.Horizon != 30 {
		t.Errorf("unexpected parameters: %+v", cfg)
	}
	if cfg.Simulations != 10000 {
		t.Errorf("simulations = %d, want 10000", cfg.Simulations)
	}
	// Unset fields keep the built-in defaults.
	if cfg.Bins != 50 || cfg.ArrivalRange.Step != 0.1 {
		t.Errorf("defaults not merged: %+v", cfg)
	}
}

func TestLoadConfig_SchemaViolation(t *testing.T) {
	path := writeTempConfig(t, `
arrival_rate: -1
`)
	if _, err := Load(path, "../../schemas/lab.cue"); err == nil {
		t.Fatal("expected schema validation error for negative arrival_rate")
	}
}

func TestLoadConfig_CrossFieldViolation(t *testing.T) {
	path := writeTempConfig(t, `
simulations: 500000
max_simulations: 200000
`)
	if _, err := Load(path, "../../schemas/lab.cue"); err == nil {
		t.Fatal("expected error when simulations exceeds the cap")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "../../schemas/lab.cue"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: 0.1, Max: 5, Step: 0.1}
	cases := []struct {
		in, want float64
	}{
		{0.05, 0.1},
		{0.1, 0.1},
		{2.5, 2.5},
		{5, 5},
		{7, 5},
	}
	for _, c := range cases {
		if got := r.Clamp(c.in); got != c.want {
			t.Errorf("Clamp(%g) = %g, want %g", c.in, got, c.want)
		}
	}
}
