package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// ExecutionDetector flags implicit call-order requirements: classes
// whose API only works when lifecycle methods run before the rest and
// teardown methods after.
type ExecutionDetector struct{}

// NewExecutionDetector creates a new ExecutionDetector
func NewExecutionDetector() *ExecutionDetector {
	return &ExecutionDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *ExecutionDetector) Category() domain.Category {
	return domain.CategoryExecution
}

var lifecyclePrefixes = []string{"init", "setup", "set_up", "connect", "start", "open", "prepare"}
var teardownPrefixes = []string{"cleanup", "clean_up", "teardown", "tear_down", "stop", "close", "disconnect", "shutdown", "dispose"}

// Detect flags classes exposing lifecycle and teardown methods alongside
// other public methods.
func (d *ExecutionDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	unit.Tree.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeClassDef {
			return true
		}
		if v := d.checkClass(unit, n); v != nil {
			violations = append(violations, v)
		}
		return true
	})

	return violations
}

func (d *ExecutionDetector) checkClass(unit *SourceUnit, cls *parser.Node) *domain.Violation {
	var lifecycle, teardown, other []string

	for _, stmt := range cls.Body {
		if stmt.Type != parser.NodeFunctionDef || stmt.Name == "" {
			continue
		}
		name := stmt.Name
		switch {
		case strings.HasPrefix(name, "__"):
			// Dunder methods have their own calling protocol
		case matchesPrefix(name, lifecyclePrefixes):
			lifecycle = append(lifecycle, name)
		case matchesPrefix(name, teardownPrefixes):
			teardown = append(teardown, name)
		case !strings.HasPrefix(name, "_"):
			other = append(other, name)
		}
	}

	if len(lifecycle) == 0 || len(teardown) == 0 || len(other) == 0 {
		return nil
	}
	sort.Strings(lifecycle)
	sort.Strings(teardown)

	v := domain.NewViolation(
		domain.CategoryExecution,
		domain.SeverityMedium,
		unit.Path,
		cls.Location.StartLine,
		cls.Location.StartCol,
		fmt.Sprintf("class '%s' couples callers to an implicit call order: %s before use, %s after",
			cls.Name, strings.Join(lifecycle, "/"), strings.Join(teardown, "/")),
	)
	v.EndLine = cls.Location.EndLine
	v.ClassName = cls.Name
	v.Locality = domain.LocalitySameClass
	v.Remediation = "Offer a context manager or factory that owns the lifecycle so callers cannot get the order wrong"
	v.CodeSnippet = unit.Snippet(cls.Location.StartLine)
	v.Context = map[string]interface{}{
		"lifecycle_methods": lifecycle,
		"teardown_methods":  teardown,
		"public_methods":    len(other),
	}
	return v
}

func matchesPrefix(name string, prefixes []string) bool {
	lower := strings.ToLower(name)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
