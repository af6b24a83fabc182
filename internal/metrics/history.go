package metrics

import (
	"sync"

	"github.com/ludo-technologies/conscan/domain"
)

// History is a bounded ring of snapshots, oldest dropped first. Safe for
// concurrent use; the stream coordinator appends while reporting reads.
type History struct {
	mu        sync.RWMutex
	snapshots []*domain.MetricsSnapshot
	capacity  int
}

// NewHistory creates a history bounded to capacity snapshots
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Append records a snapshot, evicting the oldest when full
func (h *History) Append(snapshot *domain.MetricsSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshots = append(h.snapshots, snapshot)
	if len(h.snapshots) > h.capacity {
		h.snapshots = h.snapshots[len(h.snapshots)-h.capacity:]
	}
}

// Len returns the number of retained snapshots
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.snapshots)
}

// Latest returns the most recent snapshot, or nil when empty
func (h *History) Latest() *domain.MetricsSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.snapshots) == 0 {
		return nil
	}
	return h.snapshots[len(h.snapshots)-1]
}

// Window returns up to size most recent snapshots, oldest first
func (h *History) Window(size int) []*domain.MetricsSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if size < 1 || len(h.snapshots) == 0 {
		return nil
	}
	start := len(h.snapshots) - size
	if start < 0 {
		start = 0
	}
	window := make([]*domain.MetricsSnapshot, len(h.snapshots)-start)
	copy(window, h.snapshots[start:])
	return window
}

// qualityStableBand is the delta below which quality is considered flat
const qualityStableBand = 0.02

// Trend compares the first and last snapshot of the most recent window
// and classifies the direction from both the quality-score delta and the
// violation-count delta. Nil when fewer than two snapshots exist.
func (h *History) Trend(windowSize int) *domain.TrendAnalysis {
	window := h.Window(windowSize)
	if len(window) < 2 {
		return nil
	}

	first := window[0]
	last := window[len(window)-1]
	qualityDelta := last.OverallQualityScore - first.OverallQualityScore
	violationDelta := last.TotalViolations - first.TotalViolations

	direction := domain.TrendStable
	switch {
	case qualityDelta > qualityStableBand || (qualityDelta >= 0 && violationDelta < 0):
		direction = domain.TrendImproving
	case qualityDelta < -qualityStableBand || (qualityDelta <= 0 && violationDelta > 0):
		direction = domain.TrendDegrading
	}

	return &domain.TrendAnalysis{
		Direction:      direction,
		QualityDelta:   qualityDelta,
		ViolationDelta: violationDelta,
		WindowSize:     len(window),
		First:          first.Timestamp,
		Last:           last.Timestamp,
	}
}
