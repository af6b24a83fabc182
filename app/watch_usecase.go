package app

import (
	"context"
	"log/slog"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/metrics"
	"github.com/ludo-technologies/conscan/service"
)

// WatchUseCase runs a long-lived watch session: an initial scan through
// the batch pipeline, then incremental re-analysis on file changes.
type WatchUseCase struct {
	analyze *AnalyzeUseCase
	logger  *slog.Logger
}

// NewWatchUseCase creates a new watch use case
func NewWatchUseCase(logger *slog.Logger) *WatchUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatchUseCase{
		analyze: NewAnalyzeUseCase(),
		logger:  logger,
	}
}

// Execute starts watching and blocks until the context is cancelled.
// Callbacks may be nil.
func (uc *WatchUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest, onFile domain.FileResultCallback, onBatch domain.BatchCallback) error {
	svc, cfg, err := uc.analyze.Service(req)
	if err != nil {
		return err
	}

	coordinator := service.NewStreamCoordinator(cfg, svc, uc.logger)
	fileCB, batchCB := uc.wireMetrics(cfg, onFile, onBatch)
	coordinator.OnFileResult(fileCB)
	coordinator.OnBatch(batchCB)

	if err := coordinator.Start(ctx, req.Paths); err != nil {
		return err
	}
	defer coordinator.Stop()

	// Warm the cache with a full scan so only real edits re-analyze
	files, err := uc.analyze.fileHelper.CollectSourceFiles(req.Paths, true, req.IncludePatterns, req.ExcludePatterns)
	if err == nil && len(files) > 0 {
		coordinator.ProcessPaths(files)
	}

	<-ctx.Done()
	return nil
}

// wireMetrics threads every re-analysis snapshot through a session
// history ring and logs the quality trend after each batch, wrapping
// the caller's callbacks.
func (uc *WatchUseCase) wireMetrics(cfg *config.Config, onFile domain.FileResultCallback, onBatch domain.BatchCallback) (domain.FileResultCallback, domain.BatchCallback) {
	history := metrics.NewHistory(cfg.Metrics.HistorySize)

	fileCB := func(path string, result *domain.AnalysisResult) {
		if result != nil && result.Metrics != nil {
			history.Append(result.Metrics)
		}
		if onFile != nil {
			onFile(path, result)
		}
	}
	batchCB := func(batch domain.BatchSummary) {
		if trend := history.Trend(cfg.Metrics.TrendWindow); trend != nil {
			uc.logger.Info("quality trend",
				"direction", string(trend.Direction),
				"quality_delta", trend.QualityDelta,
				"violation_delta", trend.ViolationDelta)
		}
		if onBatch != nil {
			onBatch(batch)
		}
	}
	return fileCB, batchCB
}
