package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	if cfg.Thresholds.MaxPositionalParams != 3 {
		t.Errorf("expected 3 positional params, got %d", cfg.Thresholds.MaxPositionalParams)
	}
	if cfg.Thresholds.MaxComplexity != 10 {
		t.Errorf("expected complexity 10, got %d", cfg.Thresholds.MaxComplexity)
	}
	if cfg.Thresholds.GodClassMethods != 20 {
		t.Errorf("expected 20 god-class methods, got %d", cfg.Thresholds.GodClassMethods)
	}
	if cfg.Performance.BatchSize != DefaultBatchSize {
		t.Errorf("expected batch size %d, got %d", DefaultBatchSize, cfg.Performance.BatchSize)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected text output, got %q", cfg.Output.Format)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero positional params", func(c *Config) { c.Thresholds.MaxPositionalParams = 0 }},
		{"negative complexity", func(c *Config) { c.Thresholds.MaxComplexity = -1 }},
		{"bad sort", func(c *Config) { c.Output.SortBy = "alphabetical" }},
		{"bad severity", func(c *Config) { c.Output.MinSeverity = "fatal" }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad safety", func(c *Config) { c.Fix.MaxSafety = "reckless" }},
		{"confidence above one", func(c *Config) { c.Fix.MinConfidence = 1.5 }},
		{"no include patterns", func(c *Config) { c.Analysis.IncludePatterns = nil }},
		{"zero batch size", func(c *Config) { c.Performance.BatchSize = 0 }},
		{"trend window too small", func(c *Config) { c.Metrics.TrendWindow = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestIsLiteralException(t *testing.T) {
	th := &DefaultConfig().Thresholds

	for _, raw := range []string{"0", "1", "-1", "''", `""`} {
		if !th.IsLiteralException(raw) {
			t.Errorf("%q should be an exception", raw)
		}
	}
	for _, raw := range []string{"987654", "418", "0.95"} {
		if th.IsLiteralException(raw) {
			t.Errorf("%q should not be an exception", raw)
		}
	}
}

func TestIsInitFunction(t *testing.T) {
	th := &DefaultConfig().Thresholds

	for _, name := range []string{"__init__", "__new__", "setup", "main"} {
		if !th.IsInitFunction(name) {
			t.Errorf("%q should count as initialization", name)
		}
	}
	if th.IsInitFunction("process") {
		t.Error("ordinary functions are not initialization")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conscan.yaml")

	cfg := DefaultConfig()
	cfg.Thresholds.MaxPositionalParams = 7
	cfg.Thresholds.GodClassLines = 900
	cfg.Output.MinSeverity = "medium"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Thresholds.MaxPositionalParams != 7 {
		t.Errorf("expected 7 positional params, got %d", loaded.Thresholds.MaxPositionalParams)
	}
	if loaded.Thresholds.GodClassLines != 900 {
		t.Errorf("expected 900 god-class lines, got %d", loaded.Thresholds.GodClassLines)
	}
	if loaded.Output.MinSeverity != "medium" {
		t.Errorf("expected medium min severity, got %q", loaded.Output.MinSeverity)
	}
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conscan.yaml")

	cfg := DefaultConfig()
	cfg.Output.SortBy = "alphabetical"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("an invalid file must not load")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfigFromFile("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Thresholds.MaxPositionalParams != DefaultConfig().Thresholds.MaxPositionalParams {
		t.Error("an empty path should yield defaults")
	}
}
