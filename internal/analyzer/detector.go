package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// SourceUnit is one file's analyzable state handed to the detectors
type SourceUnit struct {
	Path        string
	Language    domain.Language
	Lines       []string
	Tree        *parser.Node
	Fingerprint string
}

// Snippet returns the trimmed source line at a 1-based line number
func (u *SourceUnit) Snippet(line int) string {
	if line < 1 || line > len(u.Lines) {
		return ""
	}
	return strings.TrimSpace(u.Lines[line-1])
}

// CategoryDetector is one connascence detection pass. Detectors are pure
// with respect to shared state: they read the unit and thresholds and
// return fresh violation lists.
type CategoryDetector interface {
	// Category identifies the connascence kind this detector emits
	Category() domain.Category

	// Detect walks the parsed tree and returns violations
	Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation
}

// Orchestrator runs all applicable detectors over one source unit and
// merges their results
type Orchestrator struct {
	detectors []CategoryDetector
	size      *SizeDetector
}

// NewOrchestrator creates an orchestrator holding the full detector set
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		detectors: []CategoryDetector{
			NewAlgorithmDetector(),
			NewExecutionDetector(),
			NewValueDetector(),
			NewTimingDetector(),
			NewMeaningDetector(),
			NewNameDetector(),
			NewTypeHintDetector(),
			NewPositionDetector(),
			NewIdentityDetector(),
		},
		size: NewSizeDetector(),
	}
}

// DetectorFailure records one detector that errored on one file. The
// failing category contributes nothing for that file; all others are
// unaffected.
type DetectorFailure struct {
	Category domain.Category
	FilePath string
	Err      error
}

// Error implements the error interface
func (f DetectorFailure) Error() string {
	return fmt.Sprintf("detector %s failed on %s: %v", f.Category, f.FilePath, f.Err)
}

// Analyze runs every detector plus the size detector over the unit,
// merging and deduplicating results. Detector panics are contained per
// detector and returned as failures, never propagated.
func (o *Orchestrator) Analyze(unit *SourceUnit, thresholds *config.ThresholdConfig) ([]*domain.Violation, []DetectorFailure) {
	var merged []*domain.Violation
	var failures []DetectorFailure

	for _, d := range o.detectors {
		violations, err := o.runDetector(d, unit, thresholds)
		if err != nil {
			failures = append(failures, DetectorFailure{
				Category: d.Category(),
				FilePath: unit.Path,
				Err:      err,
			})
			continue
		}
		merged = append(merged, violations...)
	}

	sizeViolations, err := o.runSize(unit, thresholds)
	if err != nil {
		failures = append(failures, DetectorFailure{
			Category: domain.CategoryAlgorithm,
			FilePath: unit.Path,
			Err:      err,
		})
	} else {
		merged = append(merged, sizeViolations...)
	}

	merged = domain.DeduplicateViolations(merged)
	domain.SortViolations(merged, domain.SortByLocation)
	return merged, failures
}

// runDetector executes one detector with panic containment
func (o *Orchestrator) runDetector(d CategoryDetector, unit *SourceUnit, thresholds *config.ThresholdConfig) (violations []*domain.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			violations = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return d.Detect(unit, thresholds), nil
}

func (o *Orchestrator) runSize(unit *SourceUnit, thresholds *config.ThresholdConfig) (violations []*domain.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			violations = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return o.size.Detect(unit, thresholds), nil
}

// CountFunctions counts function definitions in a tree
func CountFunctions(tree *parser.Node) int {
	count := 0
	tree.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeFunctionDef {
			count++
		}
		return true
	})
	return count
}

// CountClasses counts class definitions in a tree
func CountClasses(tree *parser.Node) int {
	count := 0
	tree.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeClassDef {
			count++
		}
		return true
	})
	return count
}

// attachScope fills the enclosing function/class names on a violation
// from any tree node inside that scope.
func attachScope(v *domain.Violation, n *parser.Node) {
	if fn := n.EnclosingFunction(); fn != nil {
		v.FunctionName = fn.Name
		v.Locality = domain.LocalitySameFunction
	}
	if cls := n.EnclosingClass(); cls != nil {
		v.ClassName = cls.Name
		if v.FunctionName == "" {
			v.Locality = domain.LocalitySameClass
		}
	}
}
