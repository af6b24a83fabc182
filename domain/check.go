package domain

// CheckResult represents the result of a quality-gate check
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	Violations  []CheckViolation `json:"violations"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single budget violation
type CheckViolation struct {
	Rule      string `json:"rule"`                // max-critical, min-quality-score, etc.
	Severity  string `json:"severity"`            // error, warning
	Message   string `json:"message"`             // Human-readable description
	Actual    string `json:"actual"`              // Actual value
	Threshold string `json:"threshold,omitempty"` // Configured budget
}

// CheckSummary provides aggregate statistics for the gate
type CheckSummary struct {
	FilesAnalyzed      int     `json:"files_analyzed"`
	TotalViolations    int     `json:"total_violations"`
	CriticalViolations int     `json:"critical_violations"`
	HighViolations     int     `json:"high_violations"`
	QualityScore       float64 `json:"quality_score"`
}
