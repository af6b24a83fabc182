package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// PositionDetector flags positional-parameter coupling: callers must
// know argument order, and the coupling strength grows with arity.
type PositionDetector struct{}

// NewPositionDetector creates a new PositionDetector
func NewPositionDetector() *PositionDetector {
	return &PositionDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *PositionDetector) Category() domain.Category {
	return domain.CategoryPosition
}

// Detect flags parameter bombs on definitions and long positional
// argument lists on call sites
func (d *PositionDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	unit.Tree.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeFunctionDef:
			if v := d.checkDefinition(unit, n, thresholds); v != nil {
				violations = append(violations, v)
			}
		case parser.NodeCall:
			if v := d.checkCallSite(unit, n, thresholds); v != nil {
				violations = append(violations, v)
			}
		}
		return true
	})

	return violations
}

// checkDefinition flags definitions whose positional arity exceeds the
// threshold. Splat parameters, keyword-only parameters and a leading
// self/cls receiver do not count.
func (d *PositionDetector) checkDefinition(unit *SourceUnit, fn *parser.Node, thresholds *config.ThresholdConfig) *domain.Violation {
	count := len(fn.PositionalParams())
	if count <= thresholds.MaxPositionalParams {
		return nil
	}

	v := domain.NewViolation(
		domain.CategoryPosition,
		domain.SeverityHigh,
		unit.Path,
		fn.Location.StartLine,
		fn.Location.StartCol,
		fmt.Sprintf("function '%s' takes %d positional parameters (max %d)", fn.Name, count, thresholds.MaxPositionalParams),
	)
	v.EndLine = fn.Location.EndLine
	v.FunctionName = fn.Name
	v.Remediation = "Group related parameters into a dataclass or make trailing parameters keyword-only"
	v.CodeSnippet = unit.Snippet(fn.Location.StartLine)
	v.Weight = float64(count) / float64(thresholds.MaxPositionalParams)
	v.Context = map[string]interface{}{
		"parameter_count": count,
		"threshold":       thresholds.MaxPositionalParams,
	}
	attachScope(v, fn)
	return v
}

// checkCallSite flags calls passing more positional arguments than the
// threshold. Keyword and splat arguments are exempt since they name or
// forward their targets.
func (d *PositionDetector) checkCallSite(unit *SourceUnit, call *parser.Node, thresholds *config.ThresholdConfig) *domain.Violation {
	positional := 0
	for _, arg := range call.Arguments {
		if arg == nil {
			continue
		}
		switch arg.Type {
		case parser.NodeKeywordArg, parser.NodeStarred:
			continue
		}
		positional++
	}
	if positional <= thresholds.MaxPositionalParams {
		return nil
	}

	callee := call.Name
	if callee == "" {
		callee = "<call>"
	}
	v := domain.NewViolation(
		domain.CategoryPosition,
		domain.SeverityMedium,
		unit.Path,
		call.Location.StartLine,
		call.Location.StartCol,
		fmt.Sprintf("call to '%s' passes %d positional arguments (max %d)", callee, positional, thresholds.MaxPositionalParams),
	)
	v.Remediation = "Pass trailing arguments by keyword so the call no longer depends on parameter order"
	v.CodeSnippet = unit.Snippet(call.Location.StartLine)
	v.Context = map[string]interface{}{
		"argument_count": positional,
		"threshold":      thresholds.MaxPositionalParams,
		"callee":         callee,
	}
	attachScope(v, call)
	return v
}
