package service

import (
	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
)

// ConfigLoader bridges the file-based configuration and per-request
// options. Precedence: request fields beat the config file, which beats
// built-in defaults.
type ConfigLoader struct{}

// NewConfigLoader creates a new config loader
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// LoadForRequest resolves the effective config for one analyze request.
// An explicit ConfigPath wins; otherwise the search walks up from the
// first target path.
func (l *ConfigLoader) LoadForRequest(req domain.AnalyzeRequest) (*config.Config, error) {
	target := ""
	if len(req.Paths) > 0 {
		target = req.Paths[0]
	}

	var cfg *config.Config
	var err error
	if req.ConfigPath != "" {
		cfg, err = config.LoadConfig(req.ConfigPath)
	} else {
		cfg, err = config.LoadConfigWithTarget("", target)
	}
	if err != nil {
		return nil, err
	}

	l.applyRequest(cfg, req)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyRequest overlays non-empty request fields on the config
func (l *ConfigLoader) applyRequest(cfg *config.Config, req domain.AnalyzeRequest) {
	if len(req.IncludePatterns) > 0 {
		cfg.Analysis.IncludePatterns = req.IncludePatterns
	}
	if len(req.ExcludePatterns) > 0 {
		cfg.Analysis.ExcludePatterns = append(cfg.Analysis.ExcludePatterns, req.ExcludePatterns...)
	}
	if req.OutputFormat != "" {
		cfg.Output.Format = string(req.OutputFormat)
	}
	if req.SortBy != "" {
		cfg.Output.SortBy = string(req.SortBy)
	}
	if req.MinSeverity != "" {
		cfg.Output.MinSeverity = string(req.MinSeverity)
	}
	if req.ShowDetails {
		cfg.Output.ShowDetails = true
	}
	cfg.Analysis.Recursive = req.Recursive
}

// RequestDefaults fills request fields left empty from a loaded config
func (l *ConfigLoader) RequestDefaults(req domain.AnalyzeRequest, cfg *config.Config) domain.AnalyzeRequest {
	if req.OutputFormat == "" {
		req.OutputFormat = domain.OutputFormat(cfg.Output.Format)
	}
	if req.SortBy == "" {
		req.SortBy = domain.SortCriteria(cfg.Output.SortBy)
	}
	if req.MinSeverity == "" {
		req.MinSeverity = domain.Severity(cfg.Output.MinSeverity)
	}
	if len(req.IncludePatterns) == 0 {
		req.IncludePatterns = cfg.Analysis.IncludePatterns
	}
	if len(req.ExcludePatterns) == 0 {
		req.ExcludePatterns = cfg.Analysis.ExcludePatterns
	}
	if !req.ShowDetails {
		req.ShowDetails = cfg.Output.ShowDetails
	}
	return req
}
