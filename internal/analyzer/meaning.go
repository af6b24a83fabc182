package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// MeaningDetector flags magic literals: raw values whose meaning only
// exists in the reader's head.
type MeaningDetector struct{}

// NewMeaningDetector creates a new MeaningDetector
func NewMeaningDetector() *MeaningDetector {
	return &MeaningDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *MeaningDetector) Category() domain.Category {
	return domain.CategoryMeaning
}

var securityKeywords = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey", "credential", "auth",
}

// Detect walks the tree looking for unexplained literals
func (d *MeaningDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	unit.Tree.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeNumberLiteral, parser.NodeStringLiteral:
			if v := d.checkLiteral(unit, n, thresholds); v != nil {
				violations = append(violations, v)
			}
		}
		return true
	})

	return violations
}

func (d *MeaningDetector) checkLiteral(unit *SourceUnit, lit *parser.Node, thresholds *config.ThresholdConfig) *domain.Violation {
	if thresholds.IsLiteralException(lit.Raw) {
		return nil
	}
	if isExplainedContext(lit) {
		return nil
	}

	securityName := securityContext(lit)
	if securityName == "" && lit.Type == parser.NodeStringLiteral && isSensitiveName(unit.Snippet(lit.Location.StartLine)) {
		securityName = "value"
	}
	severity := domain.SeverityMedium
	description := fmt.Sprintf("magic literal %s; its meaning is not named", lit.Raw)
	remediation := "Extract the value into a named module-level constant"

	switch {
	case securityName != "":
		severity = domain.SeverityCritical
		if securityName == "value" {
			description = "hardcoded credential-like literal in a security-sensitive context"
			remediation = "Load the value from the environment or a secrets manager instead of source code"
		} else {
			description = fmt.Sprintf("hardcoded credential-like literal assigned to '%s'", securityName)
			remediation = fmt.Sprintf("Load '%s' from the environment or a secrets manager instead of source code", securityName)
		}
	case inConditional(lit):
		severity = domain.SeverityHigh
		description = fmt.Sprintf("magic literal %s controls a branch; its meaning is not named", lit.Raw)
	}

	v := domain.NewViolation(
		domain.CategoryMeaning,
		severity,
		unit.Path,
		lit.Location.StartLine,
		lit.Location.StartCol,
		description,
	)
	v.Remediation = remediation
	v.CodeSnippet = unit.Snippet(lit.Location.StartLine)
	v.Context = map[string]interface{}{
		"literal": lit.Raw,
	}
	if securityName != "" {
		v.Context["security"] = true
	}
	attachScope(v, lit)
	return v
}

// isExplainedContext reports whether the literal already has a name or
// is conventional enough to skip: constant definitions, default
// parameter values, docstrings, annotations, decorators and plain
// keyword arguments (the keyword is the name).
func isExplainedContext(lit *parser.Node) bool {
	for n := lit; n != nil; n = n.Parent {
		switch n.Type {
		case parser.NodeParameter, parser.NodeTypeAnnotation, parser.NodeDecorator, parser.NodeKeywordArg:
			return true
		case parser.NodeAssign, parser.NodeAnnAssign:
			if assignsToConstant(n) {
				return true
			}
		case parser.NodeExpressionStatement:
			// A bare string expression is a docstring
			if lit.Type == parser.NodeStringLiteral && lit.Parent == n {
				return true
			}
		case parser.NodeFunctionDef, parser.NodeClassDef, parser.NodeModule:
			return false
		}
	}
	return false
}

// assignsToConstant reports whether every assignment target follows the
// UPPER_SNAKE constant convention.
func assignsToConstant(assign *parser.Node) bool {
	targets := assign.Targets
	if len(targets) == 0 && assign.Target != nil {
		targets = []*parser.Node{assign.Target}
	}
	if len(targets) == 0 {
		return false
	}
	for _, t := range targets {
		if t == nil || t.Type != parser.NodeName || !isConstantName(t.Name) {
			return false
		}
	}
	return true
}

func isConstantName(name string) bool {
	if name == "" {
		return false
	}
	hasLetter := false
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r == '_' || (r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return hasLetter
}

// inConditional reports whether the literal sits inside the test of a
// branch or a comparison.
func inConditional(lit *parser.Node) bool {
	for n := lit; n != nil; n = n.Parent {
		switch n.Type {
		case parser.NodeCompare, parser.NodeConditional:
			return true
		case parser.NodeIf, parser.NodeWhile:
			if containsNode(n.Test, lit) {
				return true
			}
			return false
		case parser.NodeFunctionDef, parser.NodeClassDef, parser.NodeModule:
			return false
		}
	}
	return false
}

func containsNode(root, target *parser.Node) bool {
	if root == nil {
		return false
	}
	found := false
	root.Walk(func(n *parser.Node) bool {
		if n == target {
			found = true
			return false
		}
		return !found
	})
	return found
}

// securityContext returns the credential-like name a string literal is
// bound to or compared with, or "" when none applies.
func securityContext(lit *parser.Node) string {
	if lit.Type != parser.NodeStringLiteral {
		return ""
	}
	for n := lit; n != nil; n = n.Parent {
		switch n.Type {
		case parser.NodeAssign, parser.NodeAnnAssign:
			if name := sensitiveTargetName(n); name != "" {
				return name
			}
			return ""
		case parser.NodeCompare:
			if name := sensitiveOperandName(n); name != "" {
				return name
			}
			return ""
		case parser.NodeFunctionDef, parser.NodeClassDef, parser.NodeModule:
			return ""
		}
	}
	return ""
}

func sensitiveTargetName(assign *parser.Node) string {
	targets := assign.Targets
	if len(targets) == 0 && assign.Target != nil {
		targets = []*parser.Node{assign.Target}
	}
	for _, t := range targets {
		if t == nil {
			continue
		}
		if name := nodeBindingName(t); isSensitiveName(name) {
			return name
		}
	}
	return ""
}

func sensitiveOperandName(compare *parser.Node) string {
	for _, side := range []*parser.Node{compare.Left, compare.Right} {
		if side == nil {
			continue
		}
		if name := nodeBindingName(side); isSensitiveName(name) {
			return name
		}
	}
	return ""
}

// nodeBindingName resolves a name or attribute node to its identifier
func nodeBindingName(n *parser.Node) string {
	switch n.Type {
	case parser.NodeName:
		return n.Name
	case parser.NodeAttribute:
		return n.Name
	}
	return ""
}

func isSensitiveName(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, kw := range securityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
