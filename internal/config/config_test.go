package config

import (
	"testing"

	"plaquerisk/domain/validation"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if cfg.Validation.Iterations != 300 {
		t.Errorf("default iterations = %d, want 300", cfg.Validation.Iterations)
	}
	if cfg.Validation.Seed != 42 {
		t.Errorf("default seed = %d, want 42", cfg.Validation.Seed)
	}
	if cfg.Validation.OptimismMode != string(validation.ModeFullData) {
		t.Errorf("default optimism mode = %q, want full", cfg.Validation.OptimismMode)
	}
	if cfg.Risk.LowThreshold != 0.35 || cfg.Risk.HighThreshold != 0.65 {
		t.Errorf("default thresholds = %v/%v", cfg.Risk.LowThreshold, cfg.Risk.HighThreshold)
	}
	if cfg.Paths.LabelColumn != "adverse_outcome" {
		t.Errorf("default label column = %q", cfg.Paths.LabelColumn)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VALIDATION_ITERATIONS", "500")
	t.Setenv("VALIDATION_OPTIMISM_MODE", "perfold")
	t.Setenv("RISK_LOW_THRESHOLD", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Validation.Iterations != 500 {
		t.Errorf("iterations override ignored: %d", cfg.Validation.Iterations)
	}
	if cfg.Validation.OptimismMode != string(validation.ModePerFold) {
		t.Errorf("mode override ignored: %q", cfg.Validation.OptimismMode)
	}
	if cfg.Risk.LowThreshold != 0.25 {
		t.Errorf("threshold override ignored: %v", cfg.Risk.LowThreshold)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad optimism mode", "VALIDATION_OPTIMISM_MODE", "jackknife"},
		{"inverted thresholds", "RISK_LOW_THRESHOLD", "0.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load should reject %s=%s", tt.key, tt.value)
			}
		})
	}
}
