package service

import (
	"context"
	"sync"
	"time"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
	"github.com/ludo-technologies/conscan/internal/cache"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/metrics"
	"github.com/ludo-technologies/conscan/internal/version"
)

// AnalyzeServiceImpl implements domain.AnalyzeService. It owns the
// dispatcher, the incremental cache and the scorer for the lifetime of
// the service; requests share the cache so repeated runs stay warm.
type AnalyzeServiceImpl struct {
	cfg        *config.Config
	dispatcher *analyzer.Dispatcher
	cache      *cache.ResultCache
	reader     domain.SourceFileReader
	progress   domain.ProgressManager
	scorer     *metrics.Scorer
}

// NewAnalyzeService creates an analyze service over a loaded config
func NewAnalyzeService(cfg *config.Config, reader domain.SourceFileReader, progress domain.ProgressManager) (*AnalyzeServiceImpl, error) {
	resultCache, err := cache.NewResultCache(cfg.Performance.CacheSize)
	if err != nil {
		return nil, err
	}
	return &AnalyzeServiceImpl{
		cfg:        cfg,
		dispatcher: analyzer.NewDispatcher(),
		cache:      resultCache,
		reader:     reader,
		progress:   progress,
		scorer:     metrics.NewScorer(),
	}, nil
}

// Cache exposes the incremental cache for the stream coordinator
func (s *AnalyzeServiceImpl) Cache() *cache.ResultCache {
	return s.cache
}

// fileOutcome is one file's contribution to a run
type fileOutcome struct {
	path       string
	violations []*domain.Violation
	stats      domain.FileStatistics
	failed     bool
	warnings   []string
}

// fileTask adapts one file analysis to the parallel executor contract
type fileTask struct {
	path    string
	service *AnalyzeServiceImpl

	mu      *sync.Mutex
	results *[]*fileOutcome
}

func (t *fileTask) Name() string    { return t.path }
func (t *fileTask) IsEnabled() bool { return true }

func (t *fileTask) Execute(ctx context.Context) (interface{}, error) {
	outcome := t.service.analyzeOne(t.path)
	t.mu.Lock()
	*t.results = append(*t.results, outcome)
	t.mu.Unlock()
	return outcome, nil
}

// Analyze performs connascence analysis on the given request
func (s *AnalyzeServiceImpl) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	start := time.Now()

	files, err := s.reader.CollectSourceFiles(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no source files found in the given paths", nil)
	}

	var mu sync.Mutex
	outcomes := make([]*fileOutcome, 0, len(files))
	tasks := make([]domain.ExecutableTask, 0, len(files))
	for _, path := range files {
		tasks = append(tasks, &fileTask{path: path, service: s, mu: &mu, results: &outcomes})
	}

	executor := NewParallelExecutorWithProgress(&s.cfg.Performance, s.progress)
	if err := executor.Execute(ctx, tasks); err != nil {
		// Per-file failures surface as violations or warnings; an
		// executor-level error means the pool itself failed.
		return nil, domain.NewAnalysisError("analysis pool failed", err)
	}

	result := s.buildResult(outcomes, req)
	result.Duration = time.Since(start).Milliseconds()
	return result, nil
}

// AnalyzeFile analyzes a single source file
func (s *AnalyzeServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	exists, err := s.reader.FileExists(filePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(filePath, nil)
	}

	start := time.Now()
	outcome := s.analyzeOne(filePath)
	result := s.buildResult([]*fileOutcome{outcome}, req)
	result.Duration = time.Since(start).Milliseconds()
	return result, nil
}

// analyzeOne runs the dispatcher for one file, consulting the cache
// first. Never returns an error: failures are encoded in the outcome.
func (s *AnalyzeServiceImpl) analyzeOne(path string) *fileOutcome {
	outcome := &fileOutcome{path: path}

	source, err := s.reader.ReadFile(path)
	if err != nil {
		outcome.failed = true
		outcome.warnings = append(outcome.warnings, "could not read "+path+": "+err.Error())
		return outcome
	}

	fingerprint := domain.SourceFingerprint(source)
	if entry, ok := s.cache.Get(path, fingerprint); ok {
		outcome.violations = entry.Violations
		outcome.stats = s.fileStats(path, entry.Language, len(entry.Violations), source, nil)
		outcome.stats.FunctionCount = entry.Functions
		outcome.stats.ClassCount = entry.Classes
		outcome.stats.ByCategory, outcome.stats.BySeverity = countBy(entry.Violations)
		return outcome
	}

	dispatch := s.dispatcher.Analyze(path, source, &s.cfg.Thresholds)
	outcome.violations = dispatch.Violations
	outcome.failed = dispatch.ParseFailed
	for _, failure := range dispatch.Failures {
		outcome.warnings = append(outcome.warnings, failure.Error())
	}

	outcome.stats = s.fileStats(path, dispatch.Language, len(dispatch.Violations), source, dispatch.Unit)
	outcome.stats.ByCategory, outcome.stats.BySeverity = countBy(dispatch.Violations)

	// Parse failures are not cached: the next run should retry
	if !dispatch.ParseFailed {
		s.cache.Put(path, fingerprint, dispatch.Language, dispatch.Violations,
			outcome.stats.FunctionCount, outcome.stats.ClassCount)
	}
	return outcome
}

func (s *AnalyzeServiceImpl) fileStats(path string, language domain.Language, violations int, source []byte, unit *analyzer.SourceUnit) domain.FileStatistics {
	stats := domain.FileStatistics{
		FilePath:   path,
		Language:   language,
		Violations: violations,
	}
	if unit != nil {
		stats.FunctionCount = analyzer.CountFunctions(unit.Tree)
		stats.ClassCount = analyzer.CountClasses(unit.Tree)
		stats.LineCount = len(unit.Lines)
	} else {
		lines := 1
		for _, b := range source {
			if b == '\n' {
				lines++
			}
		}
		stats.LineCount = lines
	}
	return stats
}

// buildResult merges per-file outcomes into the run aggregate, applying
// the request's severity and category filters and sort order.
func (s *AnalyzeServiceImpl) buildResult(outcomes []*fileOutcome, req domain.AnalyzeRequest) *domain.AnalysisResult {
	var merged []*domain.Violation
	fileStats := make(map[string]domain.FileStatistics)
	summary := domain.AnalysisSummary{}
	var warnings []string

	for _, outcome := range outcomes {
		merged = append(merged, outcome.violations...)
		fileStats[outcome.path] = outcome.stats
		warnings = append(warnings, outcome.warnings...)

		summary.FilesAnalyzed++
		if outcome.failed {
			summary.FilesFailed++
		}
		summary.TotalFunctions += outcome.stats.FunctionCount
		summary.TotalClasses += outcome.stats.ClassCount
	}

	merged = filterViolations(merged, req.MinSeverity, req.Categories)
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = domain.SortBySeverity
	}
	domain.SortViolations(merged, sortBy)

	result := domain.NewAnalysisResult(merged)
	result.FileStats = fileStats
	result.Summary.FilesAnalyzed = summary.FilesAnalyzed
	result.Summary.FilesFailed = summary.FilesFailed
	result.Summary.TotalFunctions = summary.TotalFunctions
	result.Summary.TotalClasses = summary.TotalClasses
	result.Warnings = warnings
	result.Version = version.GetVersion()

	snapshot := s.scorer.Score(merged, summary.FilesAnalyzed)
	result.Metrics = snapshot

	if s.cfg.Metrics.BaselinePath != "" {
		if baseline, err := metrics.LoadBaseline(s.cfg.Metrics.BaselinePath); err == nil {
			result.Baseline = metrics.CompareBaseline(baseline, snapshot)
		}
	}
	return result
}

// filterViolations applies the minimum-severity and category filters
func filterViolations(violations []*domain.Violation, minSeverity domain.Severity, categories []domain.Category) []*domain.Violation {
	if minSeverity == "" && len(categories) == 0 {
		return violations
	}

	allowed := make(map[domain.Category]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	filtered := make([]*domain.Violation, 0, len(violations))
	for _, v := range violations {
		if minSeverity != "" && v.Severity.Level() < minSeverity.Level() {
			continue
		}
		if len(categories) > 0 && !allowed[v.Category] {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered
}

func countBy(violations []*domain.Violation) (map[domain.Category]int, map[domain.Severity]int) {
	byCategory := make(map[domain.Category]int)
	bySeverity := make(map[domain.Severity]int)
	for _, v := range violations {
		byCategory[v.Category]++
		bySeverity[v.Severity]++
	}
	return byCategory, bySeverity
}
