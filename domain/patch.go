package domain

import "context"

// SafetyLevel is the coarse risk tier of a proposed patch
type SafetyLevel string

const (
	SafetyLevelSafe     SafetyLevel = "safe"
	SafetyLevelModerate SafetyLevel = "moderate"
	SafetyLevelRisky    SafetyLevel = "risky"
)

// Rank returns the numeric rank of a safety level for policy comparison.
// Lower is safer.
func (s SafetyLevel) Rank() int {
	switch s {
	case SafetyLevelSafe:
		return 1
	case SafetyLevelModerate:
		return 2
	case SafetyLevelRisky:
		return 3
	default:
		return 4
	}
}

// PatchSuggestion is a proposed remediation for a single violation.
// Created by a fixer strategy and never mutated afterwards; the safe
// applier either applies or discards it.
type PatchSuggestion struct {
	// ViolationID is the fingerprint of the violation being fixed
	ViolationID string `json:"violation_id" yaml:"violation_id"`

	// Confidence is a [0,1] estimate of how likely the patch is correct
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Safety is the risk tier gating automatic application
	Safety SafetyLevel `json:"safety" yaml:"safety"`

	Description string `json:"description" yaml:"description"`
	FilePath    string `json:"file_path" yaml:"file_path"`

	// StartLine/EndLine bound the replaced span (1-based, inclusive)
	StartLine int `json:"start_line" yaml:"start_line"`
	EndLine   int `json:"end_line" yaml:"end_line"`

	// OldCode is the exact text being replaced; kept for rollback and to
	// verify the span still matches before applying
	OldCode string `json:"old_code" yaml:"old_code"`
	NewCode string `json:"new_code" yaml:"new_code"`

	// ExtraLines are lines inserted elsewhere in the file (e.g. a named
	// constant above the patched span). Keyed by insertion line.
	ExtraLines map[int]string `json:"extra_lines,omitempty" yaml:"extra_lines,omitempty"`
}

// Overlaps reports whether two patches touch overlapping line ranges in
// the same file. Overlapping patches can never both be applied.
func (p *PatchSuggestion) Overlaps(other *PatchSuggestion) bool {
	if p.FilePath != other.FilePath {
		return false
	}
	return p.StartLine <= other.EndLine && other.StartLine <= p.EndLine
}

// SafetyPolicy describes which patches the safe applier may apply
type SafetyPolicy struct {
	// ConfidenceThreshold is the minimum confidence to apply
	ConfidenceThreshold float64

	// MaxSafety is the most risky tier still allowed
	MaxSafety SafetyLevel
}

// Allows reports whether the policy permits applying a patch
func (p SafetyPolicy) Allows(patch *PatchSuggestion) bool {
	return patch.Confidence >= p.ConfidenceThreshold && patch.Safety.Rank() <= p.MaxSafety.Rank()
}

// PatchOutcome describes what happened to one proposed patch
type PatchOutcome struct {
	Patch  *PatchSuggestion `json:"patch" yaml:"patch"`
	Reason string           `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ApplyResult is the outcome of one safe-apply pass over a single file
type ApplyResult struct {
	Applied    []PatchOutcome `json:"applied" yaml:"applied"`
	Skipped    []PatchOutcome `json:"skipped" yaml:"skipped"`
	RolledBack []PatchOutcome `json:"rolled_back" yaml:"rolled_back"`

	// NewSource is the post-patch source text; equals the original when
	// nothing was applied or everything was rolled back
	NewSource string `json:"new_source" yaml:"new_source"`
}

// FixRequest represents a request for automated remediation
type FixRequest struct {
	Paths []string

	// DryRun proposes patches without writing files
	DryRun bool

	ConfidenceThreshold float64
	MaxSafety           SafetyLevel

	OutputFormat OutputFormat
	ConfigPath   string
	Recursive    bool
}

// FixResponse summarizes a remediation run
type FixResponse struct {
	Suggestions []*PatchSuggestion `json:"suggestions" yaml:"suggestions"`
	Results     map[string]*ApplyResult `json:"results,omitempty" yaml:"results,omitempty"`

	TotalApplied    int `json:"total_applied" yaml:"total_applied"`
	TotalSkipped    int `json:"total_skipped" yaml:"total_skipped"`
	TotalRolledBack int `json:"total_rolled_back" yaml:"total_rolled_back"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// FixService defines the business logic for automated remediation
type FixService interface {
	Fix(ctx context.Context, req FixRequest) (*FixResponse, error)
}
