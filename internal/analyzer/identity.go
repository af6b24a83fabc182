package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// IdentityDetector flags couplings to object identity: module-global
// mutable state, mutable default parameters, and identity comparisons
// against values where only equality is defined.
type IdentityDetector struct{}

// NewIdentityDetector creates a new IdentityDetector
func NewIdentityDetector() *IdentityDetector {
	return &IdentityDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *IdentityDetector) Category() domain.Category {
	return domain.CategoryIdentity
}

// Detect runs the global-binding, default-parameter and is-comparison
// passes.
func (d *IdentityDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	violations = append(violations, d.checkGlobalBindings(unit, thresholds)...)

	unit.Tree.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeFunctionDef:
			violations = append(violations, d.checkMutableDefaults(unit, n)...)
		case parser.NodeCompare:
			if v := d.checkIdentityComparison(unit, n); v != nil {
				violations = append(violations, v)
			}
		}
		return true
	})

	return violations
}

// checkGlobalBindings flags modules holding more mutable top-level
// bindings than allowed. Constant-named bindings do not count.
func (d *IdentityDetector) checkGlobalBindings(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	seen := make(map[string]bool)
	var bindings []string
	firstLine, firstCol := 0, 0

	for _, stmt := range unit.Tree.Body {
		if stmt.Type != parser.NodeAssign && stmt.Type != parser.NodeAnnAssign {
			continue
		}
		for _, target := range stmt.Targets {
			if target == nil || target.Type != parser.NodeName {
				continue
			}
			name := target.Name
			if name == "" || isConstantName(name) || strings.HasPrefix(name, "__") || seen[name] {
				continue
			}
			seen[name] = true
			bindings = append(bindings, name)
			if firstLine == 0 {
				firstLine = stmt.Location.StartLine
				firstCol = stmt.Location.StartCol
			}
		}
	}

	if len(bindings) <= thresholds.MaxGlobalBindings {
		return nil
	}
	sort.Strings(bindings)

	v := domain.NewViolation(
		domain.CategoryIdentity,
		domain.SeverityHigh,
		unit.Path,
		firstLine,
		firstCol,
		fmt.Sprintf("module holds %d mutable global bindings (max %d)", len(bindings), thresholds.MaxGlobalBindings),
	)
	v.Locality = domain.LocalityCrossModule
	v.Remediation = "Move shared state into an explicitly constructed object passed to its users"
	v.CodeSnippet = unit.Snippet(firstLine)
	v.Context = map[string]interface{}{
		"bindings":  bindings,
		"threshold": thresholds.MaxGlobalBindings,
	}
	return []*domain.Violation{v}
}

// checkMutableDefaults flags parameters defaulted to mutable collection
// literals, the classic shared-default trap.
func (d *IdentityDetector) checkMutableDefaults(unit *SourceUnit, fn *parser.Node) []*domain.Violation {
	var violations []*domain.Violation

	for _, p := range fn.Params {
		if p == nil || p.DefaultValue == nil {
			continue
		}
		if !isMutableCollection(p.DefaultValue) {
			continue
		}

		v := domain.NewViolation(
			domain.CategoryIdentity,
			domain.SeverityHigh,
			unit.Path,
			p.Location.StartLine,
			p.Location.StartCol,
			fmt.Sprintf("parameter '%s' of '%s' defaults to a mutable value shared across calls", p.Name, fn.Name),
		)
		v.FunctionName = fn.Name
		v.Remediation = fmt.Sprintf("Default '%s' to None and allocate the collection inside the function", p.Name)
		v.CodeSnippet = unit.Snippet(p.Location.StartLine)
		v.Context = map[string]interface{}{
			"parameter": p.Name,
		}
		attachScope(v, fn)
		violations = append(violations, v)
	}
	return violations
}

// identitySingletons are the values `is` comparisons are defined for
var identitySingletons = map[parser.NodeType]bool{
	parser.NodeNoneLiteral:    true,
	parser.NodeBooleanLiteral: true,
}

// checkIdentityComparison flags `is`/`is not` against anything but the
// singleton literals.
func (d *IdentityDetector) checkIdentityComparison(unit *SourceUnit, cmp *parser.Node) *domain.Violation {
	op := strings.TrimSpace(cmp.Operator)
	if op != "is" && op != "is not" {
		return nil
	}
	if operandIsSingleton(cmp.Left) || operandIsSingleton(cmp.Right) {
		return nil
	}

	v := domain.NewViolation(
		domain.CategoryIdentity,
		domain.SeverityMedium,
		unit.Path,
		cmp.Location.StartLine,
		cmp.Location.StartCol,
		fmt.Sprintf("'%s' compares object identity against a non-singleton value", op),
	)
	v.Remediation = "Use == for value comparison; reserve 'is' for None, True and False"
	v.CodeSnippet = unit.Snippet(cmp.Location.StartLine)
	v.Context = map[string]interface{}{
		"operator": op,
	}
	attachScope(v, cmp)
	return v
}

func operandIsSingleton(n *parser.Node) bool {
	return n != nil && identitySingletons[n.Type]
}
