package domain

import "time"

// StreamState is the lifecycle state of the stream coordinator
type StreamState int32

const (
	StreamStopped StreamState = iota
	StreamInitializing
	StreamWatching
	StreamProcessing
)

// String returns a string representation of the state
func (s StreamState) String() string {
	switch s {
	case StreamStopped:
		return "stopped"
	case StreamInitializing:
		return "initializing"
	case StreamWatching:
		return "watching"
	case StreamProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// ChangeEvent is a single file-system change admitted into the pipeline
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}

// FileResultCallback receives the result for one re-analyzed file.
// Best-effort: panics and errors inside the callback are caught and
// logged by the coordinator, never propagated into its state machine.
type FileResultCallback func(filePath string, result *AnalysisResult)

// BatchCallback receives the merged result of one processed batch
type BatchCallback func(batch BatchSummary)

// BatchSummary describes one drained batch of change events
type BatchSummary struct {
	BatchSize      int
	ChangedFiles   []string
	UnchangedFiles []string
	FailedFiles    []string
	Overflowed     int
	Duration       time.Duration
}

// StreamStats is a point-in-time view of coordinator activity
type StreamStats struct {
	State            StreamState
	WatchedDirs      int
	QueuedEvents     int
	ProcessedBatches int
	ProcessedFiles   int
	CacheHits        int
	CacheMisses      int
	OverflowEvents   int
}
