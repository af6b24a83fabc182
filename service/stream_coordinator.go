package service

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
	"github.com/ludo-technologies/conscan/internal/config"
)

// StreamCoordinator turns batch analysis into a file-change-driven
// pipeline. Lifecycle: Stopped -> Initializing -> Watching <-> Processing
// -> Stopped. All shared state is owned by the coordinator instance;
// there is no process-wide singleton.
type StreamCoordinator struct {
	cfg     *config.Config
	service *AnalyzeServiceImpl
	logger  *slog.Logger

	state atomic.Int32

	watcher *fsnotify.Watcher
	queue   chan domain.ChangeEvent
	done    chan struct{}
	wg      sync.WaitGroup

	mu           sync.Mutex
	watchedDirs  int
	lastEvent    map[string]time.Time
	onFileResult domain.FileResultCallback
	onBatch      domain.BatchCallback

	processedBatches atomic.Int64
	processedFiles   atomic.Int64
	overflowEvents   atomic.Int64

	stopOnce sync.Once
}

// NewStreamCoordinator creates a coordinator over an analyze service.
// The service's cache is shared, so a watch session started after a
// batch run begins warm.
func NewStreamCoordinator(cfg *config.Config, service *AnalyzeServiceImpl, logger *slog.Logger) *StreamCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamCoordinator{
		cfg:       cfg,
		service:   service,
		logger:    logger,
		lastEvent: make(map[string]time.Time),
	}
}

// State returns the current lifecycle state
func (c *StreamCoordinator) State() domain.StreamState {
	return domain.StreamState(c.state.Load())
}

// OnFileResult registers the per-file result callback
func (c *StreamCoordinator) OnFileResult(cb domain.FileResultCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFileResult = cb
}

// OnBatch registers the per-batch completion callback
func (c *StreamCoordinator) OnBatch(cb domain.BatchCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onBatch = cb
}

// Start wires the queue and notifier and begins watching the given
// directories. Initialization failure drops back to Stopped with no
// partial state retained.
func (c *StreamCoordinator) Start(ctx context.Context, dirs []string) error {
	if !c.state.CompareAndSwap(int32(domain.StreamStopped), int32(domain.StreamInitializing)) {
		return domain.NewStreamError("coordinator is not stopped", nil)
	}

	if len(dirs) == 0 {
		c.state.Store(int32(domain.StreamStopped))
		return domain.NewInvalidInputError("no directories to watch", nil)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.state.Store(int32(domain.StreamStopped))
		return domain.NewStreamError("failed to create file watcher", err)
	}

	watched := 0
	for _, dir := range dirs {
		n, err := addRecursive(watcher, dir)
		if err != nil {
			_ = watcher.Close()
			c.state.Store(int32(domain.StreamStopped))
			return domain.NewStreamError("failed to watch "+dir, err)
		}
		watched += n
	}

	queueSize := c.cfg.Performance.MaxQueueSize
	if queueSize < 1 {
		queueSize = config.DefaultMaxQueueSize
	}

	c.watcher = watcher
	c.queue = make(chan domain.ChangeEvent, queueSize)
	c.done = make(chan struct{})
	c.stopOnce = sync.Once{}
	c.mu.Lock()
	c.watchedDirs = watched
	c.lastEvent = make(map[string]time.Time)
	c.mu.Unlock()

	c.wg.Add(2)
	go c.watchLoop(ctx)
	go c.processLoop(ctx)

	c.state.Store(int32(domain.StreamWatching))
	c.logger.Info("stream coordinator started", "dirs", watched, "queue", queueSize)
	return nil
}

// addRecursive registers a directory tree with the notifier
func addRecursive(watcher *fsnotify.Watcher, root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name != root && (name == ".git" || name == "__pycache__" || name == ".venv" || name == "node_modules") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// watchLoop admits relevant change notifications into the bounded queue
func (c *StreamCoordinator) watchLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if !c.relevant(event) {
				continue
			}
			c.enqueue(domain.ChangeEvent{Path: event.Name, Timestamp: time.Now()})
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant filters events to analyzable writes, debounced per path
func (c *StreamCoordinator) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	if analyzer.DetectLanguage(event.Name) == domain.LanguageUnknown {
		return false
	}

	debounce := time.Duration(c.cfg.Performance.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = time.Duration(config.DefaultDebounceMs) * time.Millisecond
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if last, ok := c.lastEvent[event.Name]; ok && now.Sub(last) < debounce {
		return false
	}
	c.lastEvent[event.Name] = now
	return true
}

// enqueue admits an event into the bounded queue. When full, the oldest
// queued event is discarded so the newest is accepted, and the overflow
// is reported rather than silently dropped.
func (c *StreamCoordinator) enqueue(event domain.ChangeEvent) {
	select {
	case c.queue <- event:
		return
	default:
	}

	select {
	case dropped := <-c.queue:
		c.overflowEvents.Add(1)
		c.logger.Warn("event queue full, applying backpressure", "dropped", dropped.Path, "accepted", event.Path)
	default:
	}
	select {
	case c.queue <- event:
	default:
		c.overflowEvents.Add(1)
	}
}

// processLoop drains the queue in batches
func (c *StreamCoordinator) processLoop(ctx context.Context) {
	defer c.wg.Done()

	interval := time.Duration(c.cfg.Performance.DebounceMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Duration(config.DefaultDebounceMs) * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.drainBatches(false)
		}
	}
}

// drainBatches processes queued events until the queue is empty (or one
// batch, when final is false and the queue keeps refilling slower than
// the ticker).
func (c *StreamCoordinator) drainBatches(final bool) {
	for {
		batch := c.takeBatch()
		if len(batch) == 0 {
			return
		}
		c.processBatch(batch)
		if !final {
			return
		}
	}
}

// takeBatch removes up to BatchSize unique paths from the queue
func (c *StreamCoordinator) takeBatch() []string {
	batchSize := c.cfg.Performance.BatchSize
	if batchSize < 1 {
		batchSize = config.DefaultBatchSize
	}

	seen := make(map[string]bool)
	var paths []string
	for len(paths) < batchSize {
		select {
		case event := <-c.queue:
			if !seen[event.Path] {
				seen[event.Path] = true
				paths = append(paths, event.Path)
			}
		default:
			return paths
		}
	}
	return paths
}

// ProcessPaths feeds a known path list through batch processing without
// waiting for file-system events, chunked by the configured batch size.
// Used for the initial scan of a watch session.
func (c *StreamCoordinator) ProcessPaths(paths []string) []domain.BatchSummary {
	batchSize := c.cfg.Performance.BatchSize
	if batchSize < 1 {
		batchSize = config.DefaultBatchSize
	}

	var summaries []domain.BatchSummary
	for start := 0; start < len(paths); start += batchSize {
		end := start + batchSize
		if end > len(paths) {
			end = len(paths)
		}
		summaries = append(summaries, c.processBatch(paths[start:end]))
	}
	return summaries
}

// processBatch re-analyzes changed files and reuses cached results for
// unchanged ones, then fans results out to the callbacks.
func (c *StreamCoordinator) processBatch(paths []string) domain.BatchSummary {
	c.state.CompareAndSwap(int32(domain.StreamWatching), int32(domain.StreamProcessing))
	defer c.state.CompareAndSwap(int32(domain.StreamProcessing), int32(domain.StreamWatching))

	start := time.Now()
	changes := c.service.Cache().DetectChanges(paths)

	if len(changes.Changed) > 0 {
		tasks := make([]domain.ExecutableTask, 0, len(changes.Changed))
		for _, path := range changes.Changed {
			tasks = append(tasks, &streamTask{coordinator: c, path: path})
		}
		executor := NewParallelExecutorFromConfig(&c.cfg.Performance)
		if err := executor.Execute(context.Background(), tasks); err != nil {
			c.logger.Warn("stream batch pool failed", "error", err)
		}
	}

	overflowed := int(c.overflowEvents.Swap(0))
	summary := domain.BatchSummary{
		BatchSize:      len(paths),
		ChangedFiles:   changes.Changed,
		UnchangedFiles: changes.Unchanged,
		FailedFiles:    changes.Failed,
		Overflowed:     overflowed,
		Duration:       time.Since(start),
	}
	c.processedBatches.Add(1)
	c.invokeBatchCallback(summary)
	return summary
}

// streamTask re-analyzes one changed file on the shared worker pool.
// Failures are logged and absorbed; one bad file never aborts a batch.
type streamTask struct {
	coordinator *StreamCoordinator
	path        string
}

func (t *streamTask) Name() string    { return t.path }
func (t *streamTask) IsEnabled() bool { return true }

func (t *streamTask) Execute(ctx context.Context) (interface{}, error) {
	result, err := t.coordinator.analyzeFile(t.path)
	if err != nil {
		t.coordinator.logger.Warn("stream analysis failed", "path", t.path, "error", err)
		return nil, nil
	}
	t.coordinator.processedFiles.Add(1)
	t.coordinator.invokeFileCallback(t.path, result)
	return nil, nil
}

func (c *StreamCoordinator) analyzeFile(path string) (*domain.AnalysisResult, error) {
	req := domain.AnalyzeRequest{Paths: []string{path}}
	ctx, cancel := context.WithTimeout(context.Background(), c.analysisTimeout())
	defer cancel()
	return c.service.AnalyzeFile(ctx, path, req)
}

func (c *StreamCoordinator) analysisTimeout() time.Duration {
	timeout := time.Duration(c.cfg.Performance.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultTimeoutSeconds) * time.Second
	}
	return timeout
}

// invokeFileCallback calls the registered per-file hook with panic
// containment; a broken callback never corrupts coordinator state.
func (c *StreamCoordinator) invokeFileCallback(path string, result *domain.AnalysisResult) {
	c.mu.Lock()
	cb := c.onFileResult
	c.mu.Unlock()
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("file result callback panicked", "path", path, "panic", r)
		}
	}()
	cb(path, result)
}

func (c *StreamCoordinator) invokeBatchCallback(summary domain.BatchSummary) {
	c.mu.Lock()
	cb := c.onBatch
	c.mu.Unlock()
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("batch callback panicked", "panic", r)
		}
	}()
	cb(summary)
}

// Stop halts the notifier, drains remaining queued work up to the
// deadline, and transitions to Stopped. Idempotent; in-flight analysis
// completes rather than being hard-cancelled so cache writes stay
// consistent.
func (c *StreamCoordinator) Stop() {
	c.stopOnce.Do(func() {
		state := c.State()
		if state == domain.StreamStopped {
			return
		}

		if c.watcher != nil {
			_ = c.watcher.Close()
		}
		if c.done != nil {
			close(c.done)
		}
		c.wg.Wait()

		deadline := time.Now().Add(c.analysisTimeout())
		for time.Now().Before(deadline) {
			if len(c.queue) == 0 {
				break
			}
			c.drainBatches(true)
		}

		c.state.Store(int32(domain.StreamStopped))
		c.logger.Info("stream coordinator stopped",
			"batches", c.processedBatches.Load(),
			"files", c.processedFiles.Load())
	})
}

// Stats returns a point-in-time activity snapshot
func (c *StreamCoordinator) Stats() domain.StreamStats {
	hits, misses := c.service.Cache().Stats()
	c.mu.Lock()
	watched := c.watchedDirs
	c.mu.Unlock()

	queued := 0
	if c.queue != nil {
		queued = len(c.queue)
	}
	return domain.StreamStats{
		State:            c.State(),
		WatchedDirs:      watched,
		QueuedEvents:     queued,
		ProcessedBatches: int(c.processedBatches.Load()),
		ProcessedFiles:   int(c.processedFiles.Load()),
		CacheHits:        int(hits),
		CacheMisses:      int(misses),
		OverflowEvents:   int(c.overflowEvents.Load()),
	}
}
