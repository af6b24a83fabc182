package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
)

func TestWatchWiresQualityTrend(t *testing.T) {
	var buf bytes.Buffer
	uc := NewWatchUseCase(slog.New(slog.NewTextHandler(&buf, nil)))

	cfg := config.DefaultConfig()
	cfg.Metrics.TrendWindow = 2

	filesSeen := 0
	batchesSeen := 0
	fileCB, batchCB := uc.wireMetrics(cfg,
		func(path string, result *domain.AnalysisResult) { filesSeen++ },
		func(batch domain.BatchSummary) { batchesSeen++ },
	)

	fileCB("a.py", &domain.AnalysisResult{
		Metrics: &domain.MetricsSnapshot{OverallQualityScore: 0.5, TotalViolations: 9},
	})
	fileCB("b.py", &domain.AnalysisResult{
		Metrics: &domain.MetricsSnapshot{OverallQualityScore: 0.9, TotalViolations: 1},
	})
	batchCB(domain.BatchSummary{})

	if filesSeen != 2 || batchesSeen != 1 {
		t.Errorf("caller callbacks must still fire, got %d files / %d batches", filesSeen, batchesSeen)
	}
	if !strings.Contains(buf.String(), "quality trend") {
		t.Errorf("expected the trend logged after the batch, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "improving") {
		t.Errorf("rising quality should log as improving, got:\n%s", buf.String())
	}
}

func TestWatchTrendNeedsHistory(t *testing.T) {
	var buf bytes.Buffer
	uc := NewWatchUseCase(slog.New(slog.NewTextHandler(&buf, nil)))

	fileCB, batchCB := uc.wireMetrics(config.DefaultConfig(), nil, nil)
	fileCB("a.py", &domain.AnalysisResult{
		Metrics: &domain.MetricsSnapshot{OverallQualityScore: 0.5},
	})
	batchCB(domain.BatchSummary{})

	if strings.Contains(buf.String(), "quality trend") {
		t.Error("a single snapshot has no trend to log")
	}
}
