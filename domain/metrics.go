package domain

import "time"

// TrendDirection classifies how quality evolved across a window of runs
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDegrading TrendDirection = "degrading"
)

// MetricsSnapshot is a point-in-time quality scorecard for one run.
// Appended to a bounded history ring; never mutated after creation.
type MetricsSnapshot struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Violation counts
	TotalViolations int              `json:"total_violations" yaml:"total_violations"`
	BySeverity      map[Severity]int `json:"by_severity" yaml:"by_severity"`
	ByCategory      map[Category]int `json:"by_category" yaml:"by_category"`

	// ConnascenceIndex is the severity- and category-weighted sum over
	// all violations; lower is better
	ConnascenceIndex float64 `json:"connascence_index" yaml:"connascence_index"`

	// Sub-scores in [0,1]; higher is better
	RuleComplianceScore float64 `json:"rule_compliance_score" yaml:"rule_compliance_score"`
	DuplicationScore    float64 `json:"duplication_score" yaml:"duplication_score"`

	// OverallQualityScore is the dynamically reweighted average of the
	// sub-scores, in [0,1]
	OverallQualityScore float64 `json:"overall_quality_score" yaml:"overall_quality_score"`

	// Run metadata
	FilesAnalyzed int    `json:"files_analyzed" yaml:"files_analyzed"`
	Label         string `json:"label,omitempty" yaml:"label,omitempty"`
}

// TrendAnalysis compares the first and last snapshot of a sliding window
type TrendAnalysis struct {
	Direction      TrendDirection `json:"direction" yaml:"direction"`
	QualityDelta   float64        `json:"quality_delta" yaml:"quality_delta"`
	ViolationDelta int            `json:"violation_delta" yaml:"violation_delta"`
	WindowSize     int            `json:"window_size" yaml:"window_size"`
	First          time.Time      `json:"first" yaml:"first"`
	Last           time.Time      `json:"last" yaml:"last"`
}

// BaselineComparison diffs the latest snapshot against a pinned one
type BaselineComparison struct {
	Baseline *MetricsSnapshot `json:"baseline" yaml:"baseline"`
	Current  *MetricsSnapshot `json:"current" yaml:"current"`

	QualityDelta   float64          `json:"quality_delta" yaml:"quality_delta"`
	ViolationDelta int              `json:"violation_delta" yaml:"violation_delta"`
	SeverityDeltas map[Severity]int `json:"severity_deltas" yaml:"severity_deltas"`
	Improved       bool             `json:"improved" yaml:"improved"`
}
