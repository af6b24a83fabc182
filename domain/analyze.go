package domain

import (
	"context"
	"io"
	"sort"
	"time"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// SortCriteria represents the criteria for sorting violations
type SortCriteria string

const (
	SortBySeverity SortCriteria = "severity"
	SortByLocation SortCriteria = "location"
	SortByCategory SortCriteria = "category"
)

// Language is the tag assigned to a source unit by the dispatcher
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageGo         Language = "go"
	LanguageUnknown    Language = "unknown"
)

// AnalyzeRequest represents a request for connascence analysis
type AnalyzeRequest struct {
	// Input files or directories to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	ShowDetails  bool

	// Filtering and sorting
	MinSeverity Severity
	Categories  []Category
	SortBy      SortCriteria

	// Configuration
	ConfigPath string

	// Analysis options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// SaveBaseline pins this run's metrics snapshot as the baseline
	// for later comparisons
	SaveBaseline bool
}

// FileStatistics holds per-file violation counts
type FileStatistics struct {
	FilePath      string           `json:"file_path" yaml:"file_path"`
	Language      Language         `json:"language" yaml:"language"`
	Violations    int              `json:"violations" yaml:"violations"`
	ByCategory    map[Category]int `json:"by_category,omitempty" yaml:"by_category,omitempty"`
	BySeverity    map[Severity]int `json:"by_severity,omitempty" yaml:"by_severity,omitempty"`
	FunctionCount int              `json:"function_count" yaml:"function_count"`
	ClassCount    int              `json:"class_count" yaml:"class_count"`
	LineCount     int              `json:"line_count" yaml:"line_count"`
}

// AnalysisSummary provides aggregate statistics for a run
type AnalysisSummary struct {
	FilesAnalyzed   int              `json:"files_analyzed" yaml:"files_analyzed"`
	FilesFailed     int              `json:"files_failed" yaml:"files_failed"`
	TotalFunctions  int              `json:"total_functions" yaml:"total_functions"`
	TotalClasses    int              `json:"total_classes" yaml:"total_classes"`
	ByCategory      map[Category]int `json:"by_category" yaml:"by_category"`
	BySeverity      map[Severity]int `json:"by_severity" yaml:"by_severity"`
	HighestSeverity Severity         `json:"highest_severity,omitempty" yaml:"highest_severity,omitempty"`
}

// AnalysisResult is the aggregate outcome of one analysis run.
// Owned by the orchestrator for the run's duration; read-only afterwards.
type AnalysisResult struct {
	Violations      []*Violation              `json:"violations" yaml:"violations"`
	TotalViolations int                       `json:"total_violations" yaml:"total_violations"`
	FileStats       map[string]FileStatistics `json:"file_stats,omitempty" yaml:"file_stats,omitempty"`
	Summary         AnalysisSummary           `json:"summary" yaml:"summary"`
	Metrics         *MetricsSnapshot          `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Baseline        *BaselineComparison       `json:"baseline,omitempty" yaml:"baseline,omitempty"`

	Duration    int64  `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`

	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewAnalysisResult builds a result from a violation list, keeping the
// TotalViolations invariant in sync with the list length.
func NewAnalysisResult(violations []*Violation) *AnalysisResult {
	result := &AnalysisResult{
		Violations:  violations,
		FileStats:   make(map[string]FileStatistics),
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
	result.recount()
	return result
}

// AddViolations appends violations and refreshes the derived counts
func (r *AnalysisResult) AddViolations(violations ...*Violation) {
	r.Violations = append(r.Violations, violations...)
	r.recount()
}

func (r *AnalysisResult) recount() {
	r.TotalViolations = len(r.Violations)
	byCategory := make(map[Category]int)
	bySeverity := make(map[Severity]int)
	highest := Severity("")
	for _, v := range r.Violations {
		byCategory[v.Category]++
		bySeverity[v.Severity]++
		if v.Severity.Level() > highest.Level() {
			highest = v.Severity
		}
	}
	r.Summary.ByCategory = byCategory
	r.Summary.BySeverity = bySeverity
	r.Summary.HighestSeverity = highest
}

// SortViolations orders violations by the given criteria. Severity sorting
// is descending (critical first) with location as tie-breaker so output is
// deterministic across runs.
func SortViolations(violations []*Violation, by SortCriteria) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		switch by {
		case SortByCategory:
			if a.Category != b.Category {
				return a.Category < b.Category
			}
		case SortBySeverity:
			if a.Severity.Level() != b.Severity.Level() {
				return a.Severity.Level() > b.Severity.Level()
			}
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// AnalyzeService defines the core business logic for connascence analysis
type AnalyzeService interface {
	// Analyze performs connascence analysis on the given request
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error)

	// AnalyzeFile analyzes a single source file
	AnalyzeFile(ctx context.Context, filePath string, req AnalyzeRequest) (*AnalysisResult, error)
}

// SourceFileReader defines file collection and reading operations
type SourceFileReader interface {
	CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsSupportedFile(path string) bool
	FileExists(path string) (bool, error)
}

// OutputFormatter defines the interface for formatting analysis results
type OutputFormatter interface {
	// Format formats the analysis result according to the specified format
	Format(result *AnalysisResult, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(result *AnalysisResult, format OutputFormat, writer io.Writer) error
}

// ProgressManager creates progress tasks for long-running operations
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is a named unit of work for the parallel executor
type ExecutableTask interface {
	Name() string
	IsEnabled() bool
	Execute(ctx context.Context) (interface{}, error)
}

// ParallelExecutor runs tasks concurrently with bounded parallelism
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}
