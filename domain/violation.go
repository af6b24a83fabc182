package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Category identifies one of the nine connascence categories
type Category string

const (
	CategoryAlgorithm Category = "algorithm"
	CategoryExecution Category = "execution"
	CategoryValue     Category = "value"
	CategoryTiming    Category = "timing"
	CategoryMeaning   Category = "meaning"
	CategoryName      Category = "name"
	CategoryType      Category = "type"
	CategoryPosition  Category = "position"
	CategoryIdentity  Category = "identity"
)

// AllCategories lists every connascence category in canonical order
var AllCategories = []Category{
	CategoryAlgorithm,
	CategoryExecution,
	CategoryValue,
	CategoryTiming,
	CategoryMeaning,
	CategoryName,
	CategoryType,
	CategoryPosition,
	CategoryIdentity,
}

// Severity represents the severity of a violation
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Level returns the numeric rank of a severity for total ordering.
// Higher is more severe.
func (s Severity) Level() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Weight returns the scoring weight associated with a severity
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 10.0
	case SeverityHigh:
		return 5.0
	case SeverityMedium:
		return 2.0
	case SeverityLow:
		return 1.0
	case SeverityInfo:
		return 0.5
	default:
		return 0.0
	}
}

// Locality represents the smallest scope across which a coupling is felt
type Locality string

const (
	LocalitySameFunction Locality = "same_function"
	LocalitySameClass    Locality = "same_class"
	LocalitySameModule   Locality = "same_module"
	LocalityCrossModule  Locality = "cross_module"
)

// Violation is an immutable finding produced by a detector.
// It is created once and never mutated after emission.
type Violation struct {
	// Identification
	ID       string   `json:"id" yaml:"id"`
	Category Category `json:"category" yaml:"category"`
	Severity Severity `json:"severity" yaml:"severity"`

	// Location
	FilePath  string `json:"file_path" yaml:"file_path"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	EndLine   int    `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndColumn int    `json:"end_column,omitempty" yaml:"end_column,omitempty"`

	// Description
	Description string `json:"description" yaml:"description"`
	Remediation string `json:"remediation,omitempty" yaml:"remediation,omitempty"`
	CodeSnippet string `json:"code_snippet,omitempty" yaml:"code_snippet,omitempty"`

	// Enclosing scope, if known
	FunctionName string `json:"function_name,omitempty" yaml:"function_name,omitempty"`
	ClassName    string `json:"class_name,omitempty" yaml:"class_name,omitempty"`

	// Scoring
	Weight   float64  `json:"weight" yaml:"weight"`
	Locality Locality `json:"locality" yaml:"locality"`

	// Free-form structured context (literal values, parameter counts, etc.)
	Context map[string]interface{} `json:"context,omitempty" yaml:"context,omitempty"`
}

// descriptionPrefixLen bounds how much of the description participates in
// the fingerprint so that minor wording suffixes don't break dedupe.
const descriptionPrefixLen = 40

// Fingerprint derives the stable identifier for a violation from its
// defining fields. Same input always yields the same id, which is what
// makes dedupe and cross-run diffing work.
func Fingerprint(category Category, filePath string, line, column int, description string) string {
	prefix := description
	if len(prefix) > descriptionPrefixLen {
		prefix = prefix[:descriptionPrefixLen]
	}
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d|%s", category, filePath, line, column, prefix)))
	return hex.EncodeToString(h[:])[:16]
}

// SourceFingerprint hashes file content for change detection. Identical
// content always produces the same fingerprint.
func SourceFingerprint(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// NewViolation constructs a violation and assigns its fingerprint id
func NewViolation(category Category, severity Severity, filePath string, line, column int, description string) *Violation {
	return &Violation{
		ID:          Fingerprint(category, filePath, line, column, description),
		Category:    category,
		Severity:    severity,
		FilePath:    filePath,
		Line:        line,
		Column:      column,
		Description: description,
		Weight:      1.0,
		Locality:    LocalitySameModule,
	}
}

// String returns a compact human-readable representation
func (v *Violation) String() string {
	return fmt.Sprintf("[%s/%s] %s:%d:%d %s", v.Category, v.Severity, v.FilePath, v.Line, v.Column, v.Description)
}

// DeduplicateViolations removes violations whose fingerprint id was already
// seen, preserving first-seen order.
func DeduplicateViolations(violations []*Violation) []*Violation {
	seen := make(map[string]bool, len(violations))
	result := make([]*Violation, 0, len(violations))
	for _, v := range violations {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		result = append(result, v)
	}
	return result
}

// CategoryWeight returns the relative weight of a category used by the
// connascence index. Stronger (harder to refactor) connascence forms carry
// larger weights.
func CategoryWeight(c Category) float64 {
	switch c {
	case CategoryIdentity:
		return 9.0
	case CategoryValue:
		return 8.0
	case CategoryTiming:
		return 7.0
	case CategoryExecution:
		return 6.0
	case CategoryAlgorithm:
		return 5.0
	case CategoryPosition:
		return 4.0
	case CategoryMeaning:
		return 3.0
	case CategoryType:
		return 2.0
	case CategoryName:
		return 1.0
	default:
		return 1.0
	}
}
