package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// SizeDetector flags god classes, long functions and oversized modules.
// Size findings share the algorithm category: too much code in one place
// is too much algorithm coupled together.
type SizeDetector struct{}

// NewSizeDetector creates a new SizeDetector
func NewSizeDetector() *SizeDetector {
	return &SizeDetector{}
}

// Detect runs the class, function and module size passes
func (d *SizeDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	unit.Tree.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeClassDef:
			violations = append(violations, d.checkClass(unit, n, thresholds)...)
		case parser.NodeFunctionDef:
			if v := d.checkFunction(unit, n, thresholds); v != nil {
				violations = append(violations, v)
			}
		}
		return true
	})

	violations = append(violations, d.checkModule(unit, thresholds)...)
	return violations
}

// checkClass flags classes exceeding the method-count or line-count
// thresholds. A class at exactly the threshold is fine.
func (d *SizeDetector) checkClass(unit *SourceUnit, cls *parser.Node, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	methods := 0
	for _, stmt := range cls.Body {
		if stmt.Type == parser.NodeFunctionDef {
			methods++
		}
	}
	if methods > thresholds.GodClassMethods {
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityCritical,
			unit.Path,
			cls.Location.StartLine,
			cls.Location.StartCol,
			fmt.Sprintf("class '%s' defines %d methods (max %d); likely a god object", cls.Name, methods, thresholds.GodClassMethods),
		)
		v.EndLine = cls.Location.EndLine
		v.ClassName = cls.Name
		v.Locality = domain.LocalitySameClass
		v.Remediation = "Split the class along responsibility lines; extract cohesive method groups into collaborators"
		v.CodeSnippet = unit.Snippet(cls.Location.StartLine)
		v.Weight = float64(methods) / float64(thresholds.GodClassMethods)
		v.Context = map[string]interface{}{
			"method_count": methods,
			"threshold":    thresholds.GodClassMethods,
		}
		violations = append(violations, v)
	}

	lines := cls.Location.EndLine - cls.Location.StartLine + 1
	if lines > thresholds.GodClassLines {
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityCritical,
			unit.Path,
			cls.Location.StartLine,
			cls.Location.StartCol,
			fmt.Sprintf("class '%s' spans %d lines (max %d)", cls.Name, lines, thresholds.GodClassLines),
		)
		v.EndLine = cls.Location.EndLine
		v.ClassName = cls.Name
		v.Locality = domain.LocalitySameClass
		v.Remediation = "Move loosely-related state and behavior out of the class"
		v.CodeSnippet = unit.Snippet(cls.Location.StartLine)
		v.Context = map[string]interface{}{
			"line_count": lines,
			"threshold":  thresholds.GodClassLines,
		}
		violations = append(violations, v)
	}

	return violations
}

// checkFunction flags functions that are too long by line span or by
// statement count.
func (d *SizeDetector) checkFunction(unit *SourceUnit, fn *parser.Node, thresholds *config.ThresholdConfig) *domain.Violation {
	lines := fn.Location.EndLine - fn.Location.StartLine + 1
	statements := countStatements(fn)

	overLines := lines > thresholds.MaxFunctionLines
	overStatements := statements > thresholds.MaxFunctionStatements
	if !overLines && !overStatements {
		return nil
	}

	var description string
	switch {
	case overLines && overStatements:
		description = fmt.Sprintf("function '%s' spans %d lines and %d statements (max %d/%d)",
			fn.Name, lines, statements, thresholds.MaxFunctionLines, thresholds.MaxFunctionStatements)
	case overLines:
		description = fmt.Sprintf("function '%s' spans %d lines (max %d)", fn.Name, lines, thresholds.MaxFunctionLines)
	default:
		description = fmt.Sprintf("function '%s' has %d statements (max %d)", fn.Name, statements, thresholds.MaxFunctionStatements)
	}

	v := domain.NewViolation(
		domain.CategoryAlgorithm,
		domain.SeverityMedium,
		unit.Path,
		fn.Location.StartLine,
		fn.Location.StartCol,
		description,
	)
	v.EndLine = fn.Location.EndLine
	v.FunctionName = fn.Name
	v.Remediation = "Extract named steps into helper functions"
	v.CodeSnippet = unit.Snippet(fn.Location.StartLine)
	v.Context = map[string]interface{}{
		"line_count":      lines,
		"statement_count": statements,
	}
	attachScope(v, fn)
	return v
}

// countStatements counts statement nodes in a function body, not
// descending into nested definitions.
func countStatements(fn *parser.Node) int {
	count := 0
	for _, stmt := range fn.Body {
		stmt.Walk(func(n *parser.Node) bool {
			if n.IsFunction() || n.Type == parser.NodeClassDef {
				return false
			}
			if n.IsStatement() {
				count++
			}
			return true
		})
	}
	return count
}

// checkModule flags files that outgrew a single module
func (d *SizeDetector) checkModule(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	lines := len(unit.Lines)
	classes := CountClasses(unit.Tree)
	functions := topLevelFunctions(unit.Tree)

	if lines > thresholds.MaxModuleLines {
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityMedium,
			unit.Path, 1, 0,
			fmt.Sprintf("module spans %d lines (max %d)", lines, thresholds.MaxModuleLines),
		)
		v.Remediation = "Split the module into focused files"
		v.Context = map[string]interface{}{"line_count": lines, "threshold": thresholds.MaxModuleLines}
		violations = append(violations, v)
	}
	if classes > thresholds.MaxModuleClasses {
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityMedium,
			unit.Path, 1, 0,
			fmt.Sprintf("module defines %d classes (max %d)", classes, thresholds.MaxModuleClasses),
		)
		v.Remediation = "Move classes into their own modules"
		v.Context = map[string]interface{}{"class_count": classes, "threshold": thresholds.MaxModuleClasses}
		violations = append(violations, v)
	}
	if functions > thresholds.MaxModuleFunctions {
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityMedium,
			unit.Path, 1, 0,
			fmt.Sprintf("module defines %d top-level functions (max %d)", functions, thresholds.MaxModuleFunctions),
		)
		v.Remediation = "Group related functions into modules or classes"
		v.Context = map[string]interface{}{"function_count": functions, "threshold": thresholds.MaxModuleFunctions}
		violations = append(violations, v)
	}

	return violations
}

func topLevelFunctions(tree *parser.Node) int {
	count := 0
	for _, stmt := range tree.Body {
		if stmt.Type == parser.NodeFunctionDef {
			count++
		}
	}
	return count
}
