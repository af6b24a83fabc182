package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/conscan/internal/constants"
)

// Default detection thresholds
const (
	// DefaultMaxPositionalParams is the maximum positional parameters a
	// function may take before a position violation is emitted
	DefaultMaxPositionalParams = 3

	// DefaultMaxComplexity is the cyclomatic complexity ceiling
	DefaultMaxComplexity = 10

	// DefaultGodClassMethods is the method count above which a class is
	// flagged as a god object
	DefaultGodClassMethods = 20

	// DefaultGodClassLines is the line span above which a class is
	// flagged as a god object
	DefaultGodClassLines = 500

	// DefaultMaxFunctionLines bounds function line span
	DefaultMaxFunctionLines = 60

	// DefaultMaxFunctionStatements bounds function statement count
	DefaultMaxFunctionStatements = 40

	// DefaultMaxModuleLines bounds module line count
	DefaultMaxModuleLines = 1000

	// DefaultMaxModuleClasses bounds class count per module
	DefaultMaxModuleClasses = 10

	// DefaultMaxModuleFunctions bounds top-level function count per module
	DefaultMaxModuleFunctions = 30

	// DefaultNameUsageThreshold is the identifier fan-in limit
	DefaultNameUsageThreshold = 8

	// DefaultMaxGlobalBindings bounds module-level mutable bindings
	DefaultMaxGlobalBindings = 5
)

// Default stream/performance settings
const (
	DefaultMaxWorkers     = 4
	DefaultMaxQueueSize   = 256
	DefaultBatchSize      = 10
	DefaultDebounceMs     = 300
	DefaultTimeoutSeconds = 60
	DefaultCacheSize      = 1024
)

// Default autofix settings
const (
	DefaultMinConfidence = 0.7
	DefaultMaxSafety     = "safe"
)

// Default metrics settings
const (
	DefaultHistorySize = 100
	DefaultTrendWindow = 10
)

// Config represents the main configuration structure
type Config struct {
	// Thresholds holds the numeric detection limits
	Thresholds ThresholdConfig `json:"thresholds" mapstructure:"thresholds" yaml:"thresholds"`

	// Analysis holds general analysis configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Performance holds worker pool and stream settings
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Fix holds autofix gating configuration
	Fix FixConfig `json:"fix" mapstructure:"fix" yaml:"fix"`

	// Metrics holds scoring and history configuration
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics" yaml:"metrics"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`
}

// ThresholdConfig holds named numeric limits for the detectors.
// Immutable per analysis run.
type ThresholdConfig struct {
	MaxPositionalParams   int `json:"max_positional_params" mapstructure:"max_positional_params" yaml:"max_positional_params"`
	MaxComplexity         int `json:"max_complexity" mapstructure:"max_complexity" yaml:"max_complexity"`
	GodClassMethods       int `json:"god_class_methods" mapstructure:"god_class_methods" yaml:"god_class_methods"`
	GodClassLines         int `json:"god_class_lines" mapstructure:"god_class_lines" yaml:"god_class_lines"`
	MaxFunctionLines      int `json:"max_function_lines" mapstructure:"max_function_lines" yaml:"max_function_lines"`
	MaxFunctionStatements int `json:"max_function_statements" mapstructure:"max_function_statements" yaml:"max_function_statements"`
	MaxModuleLines        int `json:"max_module_lines" mapstructure:"max_module_lines" yaml:"max_module_lines"`
	MaxModuleClasses      int `json:"max_module_classes" mapstructure:"max_module_classes" yaml:"max_module_classes"`
	MaxModuleFunctions    int `json:"max_module_functions" mapstructure:"max_module_functions" yaml:"max_module_functions"`
	NameUsageThreshold    int `json:"name_usage_threshold" mapstructure:"name_usage_threshold" yaml:"name_usage_threshold"`
	MaxGlobalBindings     int `json:"max_global_bindings" mapstructure:"max_global_bindings" yaml:"max_global_bindings"`

	// MagicLiteralExceptions are literals never flagged as magic values
	MagicLiteralExceptions []string `json:"magic_literal_exceptions" mapstructure:"magic_literal_exceptions" yaml:"magic_literal_exceptions"`

	// InitFunctionNames are functions in which dynamic allocation is
	// allowed under the no-heap-growth-after-init rule
	InitFunctionNames []string `json:"init_function_names" mapstructure:"init_function_names" yaml:"init_function_names"`
}

// IsLiteralException reports whether a literal is on the exception list
func (t *ThresholdConfig) IsLiteralException(raw string) bool {
	for _, e := range t.MagicLiteralExceptions {
		if raw == e {
			return true
		}
	}
	return false
}

// IsInitFunction reports whether a function name belongs to the
// recognized initialization set
func (t *ThresholdConfig) IsInitFunction(name string) bool {
	for _, n := range t.InitFunctionNames {
		if name == n {
			return true
		}
	}
	return false
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// RespectGitignore controls whether .gitignore rules are honored
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// PerformanceConfig holds worker pool and stream coordinator settings
type PerformanceConfig struct {
	// MaxWorkers bounds the per-file detection worker pool
	MaxWorkers int `json:"max_workers" mapstructure:"max_workers" yaml:"max_workers"`

	// MaxQueueSize bounds the change-event queue
	MaxQueueSize int `json:"max_queue_size" mapstructure:"max_queue_size" yaml:"max_queue_size"`

	// BatchSize is how many queued events one processing pass drains
	BatchSize int `json:"batch_size" mapstructure:"batch_size" yaml:"batch_size"`

	// DebounceMs coalesces rapid changes to the same file
	DebounceMs int `json:"debounce_ms" mapstructure:"debounce_ms" yaml:"debounce_ms"`

	// TimeoutSeconds bounds a single file analysis
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// CacheSize bounds the incremental result cache (entries)
	CacheSize int `json:"cache_size" mapstructure:"cache_size" yaml:"cache_size"`
}

// FixConfig holds autofix gating configuration
type FixConfig struct {
	// MinConfidence is the minimum patch confidence to apply
	MinConfidence float64 `json:"min_confidence" mapstructure:"min_confidence" yaml:"min_confidence"`

	// MaxSafety is the most risky tier auto-applied: safe, moderate, risky
	MaxSafety string `json:"max_safety" mapstructure:"max_safety" yaml:"max_safety"`
}

// MetricsConfig holds scoring and history configuration
type MetricsConfig struct {
	// HistorySize bounds the snapshot history ring
	HistorySize int `json:"history_size" mapstructure:"history_size" yaml:"history_size"`

	// TrendWindow is the sliding window size for trend analysis
	TrendWindow int `json:"trend_window" mapstructure:"trend_window" yaml:"trend_window"`

	// BaselinePath is where the pinned baseline snapshot is stored
	BaselinePath string `json:"baseline_path" mapstructure:"baseline_path" yaml:"baseline_path"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// SortBy specifies how to sort violations: severity, location, category
	SortBy string `json:"sort_by" mapstructure:"sort_by" yaml:"sort_by"`

	// MinSeverity filters reported violations
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`

	// ShowDetails controls whether code snippets are included
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			MaxPositionalParams:   DefaultMaxPositionalParams,
			MaxComplexity:         DefaultMaxComplexity,
			GodClassMethods:       DefaultGodClassMethods,
			GodClassLines:         DefaultGodClassLines,
			MaxFunctionLines:      DefaultMaxFunctionLines,
			MaxFunctionStatements: DefaultMaxFunctionStatements,
			MaxModuleLines:        DefaultMaxModuleLines,
			MaxModuleClasses:      DefaultMaxModuleClasses,
			MaxModuleFunctions:    DefaultMaxModuleFunctions,
			NameUsageThreshold:    DefaultNameUsageThreshold,
			MaxGlobalBindings:     DefaultMaxGlobalBindings,
			MagicLiteralExceptions: []string{
				"0", "1", "-1", "2", "10", "100", "0.0", "1.0",
				"''", `""`, "0.5",
			},
			InitFunctionNames: []string{
				"__init__", "__new__", "setup", "setUp", "init",
				"initialize", "configure", "main", "create", "connect",
			},
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{"**/*.py"},
			ExcludePatterns: []string{
				"__pycache__",
				".git",
				".venv",
				"venv",
				"node_modules",
				"build",
				"dist",
				".tox",
				".mypy_cache",
				"*.egg-info",
			},
			Recursive:        true,
			RespectGitignore: true,
		},
		Performance: PerformanceConfig{
			MaxWorkers:     defaultWorkers(),
			MaxQueueSize:   DefaultMaxQueueSize,
			BatchSize:      DefaultBatchSize,
			DebounceMs:     DefaultDebounceMs,
			TimeoutSeconds: DefaultTimeoutSeconds,
			CacheSize:      DefaultCacheSize,
		},
		Fix: FixConfig{
			MinConfidence: DefaultMinConfidence,
			MaxSafety:     DefaultMaxSafety,
		},
		Metrics: MetricsConfig{
			HistorySize: DefaultHistorySize,
			TrendWindow: DefaultTrendWindow,
		},
		Output: OutputConfig{
			Format:      "text",
			SortBy:      "severity",
			MinSeverity: "info",
		},
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return DefaultMaxWorkers
	}
	return n
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// A fresh viper instance per load avoids shared-state races
	v := viper.New()
	cfg := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// searchConfigInDirectory searches for configuration files in a directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files, searching from
// the target path upward, then the working directory, then XDG locations.
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		constants.ConfigFileName,
		"conscan.yml",
		".conscan.toml",
		".conscan.yml",
		"conscan.json",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if cfg := searchConfigInDirectory(dir, candidates); cfg != "" {
					return cfg
				}
				if parent := filepath.Dir(dir); parent == dir {
					break
				}
			}
		}
	}

	if cfg := searchConfigInDirectory(".", candidates); cfg != "" {
		return cfg
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if cfg := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); cfg != "" {
			return cfg
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if cfg := searchConfigInDirectory(filepath.Join(home, ".config", constants.ToolName), candidates); cfg != "" {
			return cfg
		}
	}

	if envConfig := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}
	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	t := &c.Thresholds
	for name, value := range map[string]int{
		"thresholds.max_positional_params": t.MaxPositionalParams,
		"thresholds.max_complexity":        t.MaxComplexity,
		"thresholds.god_class_methods":     t.GodClassMethods,
		"thresholds.god_class_lines":       t.GodClassLines,
		"thresholds.max_function_lines":    t.MaxFunctionLines,
		"thresholds.max_module_lines":      t.MaxModuleLines,
		"thresholds.name_usage_threshold":  t.NameUsageThreshold,
	} {
		if value < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", name, value)
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return fmt.Errorf("performance.max_workers must be >= 1, got %d", c.Performance.MaxWorkers)
	}
	if c.Performance.MaxQueueSize < 1 {
		return fmt.Errorf("performance.max_queue_size must be >= 1, got %d", c.Performance.MaxQueueSize)
	}
	if c.Performance.BatchSize < 1 {
		return fmt.Errorf("performance.batch_size must be >= 1, got %d", c.Performance.BatchSize)
	}

	if c.Fix.MinConfidence < 0 || c.Fix.MinConfidence > 1 {
		return fmt.Errorf("fix.min_confidence must be in [0,1], got %f", c.Fix.MinConfidence)
	}
	switch c.Fix.MaxSafety {
	case "safe", "moderate", "risky":
	default:
		return fmt.Errorf("invalid fix.max_safety '%s', must be one of: safe, moderate, risky", c.Fix.MaxSafety)
	}

	validFormats := map[string]bool{"text": true, "json": true, "yaml": true, "csv": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	validSortBy := map[string]bool{"severity": true, "location": true, "category": true}
	if !validSortBy[c.Output.SortBy] {
		return fmt.Errorf("invalid output.sort_by '%s', must be one of: severity, location, category", c.Output.SortBy)
	}

	validSeverities := map[string]bool{"critical": true, "high": true, "medium": true, "low": true, "info": true}
	if !validSeverities[c.Output.MinSeverity] {
		return fmt.Errorf("invalid output.min_severity '%s'", c.Output.MinSeverity)
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	if c.Metrics.HistorySize < 1 {
		return fmt.Errorf("metrics.history_size must be >= 1, got %d", c.Metrics.HistorySize)
	}
	if c.Metrics.TrendWindow < 2 {
		return fmt.Errorf("metrics.trend_window must be >= 2, got %d", c.Metrics.TrendWindow)
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("thresholds", cfg.Thresholds)
	v.Set("analysis", cfg.Analysis)
	v.Set("performance", cfg.Performance)
	v.Set("fix", cfg.Fix)
	v.Set("metrics", cfg.Metrics)
	v.Set("output", cfg.Output)

	return v.WriteConfig()
}
