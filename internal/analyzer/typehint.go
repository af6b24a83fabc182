package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// TypeHintDetector flags public functions exposing no type information
// at all: callers must read the body to know what to pass.
type TypeHintDetector struct{}

// NewTypeHintDetector creates a new TypeHintDetector
func NewTypeHintDetector() *TypeHintDetector {
	return &TypeHintDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *TypeHintDetector) Category() domain.Category {
	return domain.CategoryType
}

// Detect flags public functions with neither parameter nor return
// annotations.
func (d *TypeHintDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	unit.Tree.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeFunctionDef {
			return true
		}
		if strings.HasPrefix(n.Name, "_") {
			return true
		}
		if hasAnyAnnotation(n) {
			return true
		}
		if len(n.PositionalParams()) == 0 && n.ReturnType == nil {
			// Nothing to annotate
			return true
		}

		v := domain.NewViolation(
			domain.CategoryType,
			domain.SeverityLow,
			unit.Path,
			n.Location.StartLine,
			n.Location.StartCol,
			fmt.Sprintf("public function '%s' has no parameter or return annotations", n.Name),
		)
		v.EndLine = n.Location.EndLine
		v.FunctionName = n.Name
		v.Remediation = "Annotate the parameters and return type so the contract is explicit"
		v.CodeSnippet = unit.Snippet(n.Location.StartLine)
		v.Context = map[string]interface{}{
			"parameter_count": len(n.PositionalParams()),
		}
		attachScope(v, n)
		violations = append(violations, v)
		return true
	})

	return violations
}

// hasAnyAnnotation reports whether the function annotates its return
// type or any non-receiver parameter.
func hasAnyAnnotation(fn *parser.Node) bool {
	if fn.ReturnType != nil {
		return true
	}
	for _, p := range fn.Params {
		if p == nil || reservedSelfNames[p.Name] {
			continue
		}
		if p.TypeAnnotation != nil {
			return true
		}
	}
	return false
}
