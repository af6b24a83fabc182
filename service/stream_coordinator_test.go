package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
)

func newTestCoordinator(t *testing.T, cfg *config.Config) *StreamCoordinator {
	t.Helper()
	svc := newTestService(t, cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStreamCoordinator(cfg, svc, logger)
}

func writeSources(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("mod%02d.py", i)
		paths = append(paths, writeSource(t, dir, name, fmt.Sprintf("value_%d = %d\n", i, i)))
	}
	return paths
}

func TestProcessPathsChunksByBatchSize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Performance.BatchSize = 10

	c := newTestCoordinator(t, cfg)
	paths := writeSources(t, t.TempDir(), 25)

	summaries := c.ProcessPaths(paths)
	if len(summaries) != 3 {
		t.Fatalf("25 paths at batch size 10 should make 3 batches, got %d", len(summaries))
	}

	sizes := []int{summaries[0].BatchSize, summaries[1].BatchSize, summaries[2].BatchSize}
	if sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Errorf("expected batch sizes 10/10/5, got %v", sizes)
	}

	changed := 0
	for _, s := range summaries {
		changed += len(s.ChangedFiles)
		if len(s.FailedFiles) != 0 {
			t.Errorf("no batch should fail, got %v", s.FailedFiles)
		}
	}
	if changed != 25 {
		t.Errorf("a cold cache should mark every path changed, got %d", changed)
	}
}

func TestProcessPathsSecondRunUsesCache(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Performance.BatchSize = 10

	c := newTestCoordinator(t, cfg)
	paths := writeSources(t, t.TempDir(), 25)

	c.ProcessPaths(paths)
	summaries := c.ProcessPaths(paths)

	for _, s := range summaries {
		if len(s.ChangedFiles) != 0 {
			t.Errorf("untouched files must not re-analyze, got %v", s.ChangedFiles)
		}
	}
	unchanged := 0
	for _, s := range summaries {
		unchanged += len(s.UnchangedFiles)
	}
	if unchanged != 25 {
		t.Errorf("expected all 25 paths unchanged on the warm run, got %d", unchanged)
	}
}

func TestProcessPathsFiresCallbacks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Performance.BatchSize = 10

	c := newTestCoordinator(t, cfg)
	paths := writeSources(t, t.TempDir(), 25)

	var mu sync.Mutex
	batches := 0
	files := 0
	c.OnBatch(func(batch domain.BatchSummary) {
		mu.Lock()
		batches++
		mu.Unlock()
	})
	c.OnFileResult(func(path string, result *domain.AnalysisResult) {
		mu.Lock()
		files++
		mu.Unlock()
	})

	c.ProcessPaths(paths)
	if batches != 3 {
		t.Errorf("expected 3 batch callbacks, got %d", batches)
	}
	if files != 25 {
		t.Errorf("expected a file callback per changed file, got %d", files)
	}
}

func TestProcessPathsTracksStats(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Performance.BatchSize = 10

	c := newTestCoordinator(t, cfg)
	c.ProcessPaths(writeSources(t, t.TempDir(), 25))

	stats := c.Stats()
	if stats.ProcessedBatches != 3 {
		t.Errorf("expected 3 processed batches, got %d", stats.ProcessedBatches)
	}
	if stats.ProcessedFiles != 25 {
		t.Errorf("expected 25 processed files, got %d", stats.ProcessedFiles)
	}
}

func TestCoordinatorCallbackPanicContained(t *testing.T) {
	cfg := config.DefaultConfig()
	c := newTestCoordinator(t, cfg)
	c.OnFileResult(func(path string, result *domain.AnalysisResult) {
		panic("callback bug")
	})

	paths := writeSources(t, t.TempDir(), 1)
	summaries := c.ProcessPaths(paths)
	if len(summaries) != 1 {
		t.Fatal("a panicking callback must not abort the batch")
	}
}

func TestCoordinatorStartStop(t *testing.T) {
	cfg := config.DefaultConfig()
	c := newTestCoordinator(t, cfg)

	if c.State() != domain.StreamStopped {
		t.Fatalf("a fresh coordinator starts stopped, got %s", c.State())
	}

	dir := t.TempDir()
	if err := c.Start(context.Background(), []string{dir}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if c.State() != domain.StreamWatching {
		t.Errorf("expected watching after start, got %s", c.State())
	}

	if err := c.Start(context.Background(), []string{dir}); err == nil {
		t.Error("starting a running coordinator must fail")
	}

	c.Stop()
	if c.State() != domain.StreamStopped {
		t.Errorf("expected stopped after stop, got %s", c.State())
	}

	// Second stop is a no-op
	c.Stop()
	if c.State() != domain.StreamStopped {
		t.Error("stop must be idempotent")
	}
}

func TestCoordinatorStartRequiresDirs(t *testing.T) {
	c := newTestCoordinator(t, config.DefaultConfig())

	if err := c.Start(context.Background(), nil); err == nil {
		t.Fatal("expected an error for an empty directory list")
	}
	if c.State() != domain.StreamStopped {
		t.Errorf("a failed start must drop back to stopped, got %s", c.State())
	}
}

func TestProcessBatchUsesWorkerPool(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Performance.BatchSize = 16
	cfg.Performance.MaxWorkers = 4

	c := newTestCoordinator(t, cfg)
	paths := writeSources(t, t.TempDir(), 8)

	var current, peak int32
	c.OnFileResult(func(path string, result *domain.AnalysisResult) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&current, -1)
	})

	c.ProcessPaths(paths)
	if atomic.LoadInt32(&peak) < 2 {
		t.Errorf("changed files should re-analyze concurrently on the pool, peak was %d", peak)
	}
}
