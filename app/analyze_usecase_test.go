package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
)

func TestAnalyzeSavesBaseline(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rec.py")
	if err := os.WriteFile(src, []byte("def rec(n):\n    return rec(n - 1)\n"), 0644); err != nil {
		t.Fatal(err)
	}

	baselinePath := filepath.Join(dir, "baseline.yaml")
	cfgPath := filepath.Join(dir, "conscan.yaml")
	cfg := config.DefaultConfig()
	cfg.Metrics.BaselinePath = baselinePath
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	uc := NewAnalyzeUseCase()
	req := domain.AnalyzeRequest{
		Paths:        []string{src},
		ConfigPath:   cfgPath,
		SaveBaseline: true,
	}
	if _, err := uc.Execute(context.Background(), req); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if _, err := os.Stat(baselinePath); err != nil {
		t.Fatalf("expected the baseline snapshot written: %v", err)
	}

	// A later run diffs against the pinned snapshot
	req.SaveBaseline = false
	result, err := uc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.Baseline == nil {
		t.Fatal("expected a baseline comparison on the result")
	}
	if result.Baseline.ViolationDelta != 0 {
		t.Errorf("identical runs should diff to zero, got %d", result.Baseline.ViolationDelta)
	}
}
