package analyzer

import (
	"fmt"
	"sort"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// ValueDetector flags shared mutable state: collection-typed attributes
// written by more than one method of the same class.
type ValueDetector struct{}

// NewValueDetector creates a new ValueDetector
func NewValueDetector() *ValueDetector {
	return &ValueDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *ValueDetector) Category() domain.Category {
	return domain.CategoryValue
}

// Detect scans class bodies for self attributes initialized to mutable
// collections and assigned from multiple methods.
func (d *ValueDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	unit.Tree.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeClassDef {
			return true
		}
		violations = append(violations, d.checkClass(unit, n)...)
		return true
	})

	return violations
}

type attributeWrites struct {
	mutable   bool
	writers   map[string]bool
	firstLine int
	firstCol  int
}

func (d *ValueDetector) checkClass(unit *SourceUnit, cls *parser.Node) []*domain.Violation {
	attrs := make(map[string]*attributeWrites)

	for _, stmt := range cls.Body {
		if stmt.Type != parser.NodeFunctionDef {
			continue
		}
		method := stmt.Name
		for _, bodyStmt := range stmt.Body {
			bodyStmt.Walk(func(n *parser.Node) bool {
				if n.IsFunction() {
					return false
				}
				if n.Type != parser.NodeAssign && n.Type != parser.NodeAugAssign {
					return true
				}
				for _, target := range n.Targets {
					attr := selfAttributeName(target)
					if attr == "" {
						continue
					}
					w, ok := attrs[attr]
					if !ok {
						w = &attributeWrites{
							writers:   make(map[string]bool),
							firstLine: n.Location.StartLine,
							firstCol:  n.Location.StartCol,
						}
						attrs[attr] = w
					}
					w.writers[method] = true
					if isMutableCollection(n.Value) || n.Type == parser.NodeAugAssign {
						w.mutable = true
					}
				}
				return true
			})
		}
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	var violations []*domain.Violation
	for _, name := range names {
		w := attrs[name]
		if !w.mutable || len(w.writers) < 2 {
			continue
		}

		writers := make([]string, 0, len(w.writers))
		for m := range w.writers {
			writers = append(writers, m)
		}
		sort.Strings(writers)

		v := domain.NewViolation(
			domain.CategoryValue,
			domain.SeverityMedium,
			unit.Path,
			w.firstLine,
			w.firstCol,
			fmt.Sprintf("mutable attribute 'self.%s' is written by %d methods of '%s'", name, len(writers), cls.Name),
		)
		v.ClassName = cls.Name
		v.Locality = domain.LocalitySameClass
		v.Remediation = fmt.Sprintf("Funnel all writes to 'self.%s' through one owning method or replace it with an immutable value", name)
		v.CodeSnippet = unit.Snippet(w.firstLine)
		v.Context = map[string]interface{}{
			"attribute": name,
			"writers":   writers,
		}
		violations = append(violations, v)
	}
	return violations
}

// selfAttributeName returns "x" for a `self.x` assignment target
func selfAttributeName(target *parser.Node) string {
	if target == nil || target.Type != parser.NodeAttribute {
		return ""
	}
	if target.Object == nil || target.Object.Type != parser.NodeName {
		return ""
	}
	if target.Object.Name != "self" && target.Object.Name != "cls" {
		return ""
	}
	return target.Name
}

// isMutableCollection reports whether an assigned value is a list, dict
// or set literal, their constructor calls, or a comprehension.
func isMutableCollection(value *parser.Node) bool {
	if value == nil {
		return false
	}
	switch value.Type {
	case parser.NodeList, parser.NodeDict, parser.NodeSet, parser.NodeComprehension:
		return true
	case parser.NodeCall:
		switch value.Name {
		case "list", "dict", "set", "defaultdict", "OrderedDict", "Counter", "deque", "bytearray":
			return true
		}
	}
	return false
}
