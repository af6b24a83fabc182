package analyzer

import (
	"fmt"
	"sort"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// NameDetector flags high-fan-in identifiers: names so widely referenced
// that renaming them touches much of the module.
type NameDetector struct{}

// NewNameDetector creates a new NameDetector
func NewNameDetector() *NameDetector {
	return &NameDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *NameDetector) Category() domain.Category {
	return domain.CategoryName
}

// reservedSelfNames never count toward fan-in; they are positional
// conventions, not shared names.
var reservedSelfNames = map[string]bool{
	"self": true,
	"cls":  true,
	"_":    true,
}

type nameUsage struct {
	count     int
	firstLine int
	firstCol  int
}

// Detect counts identifier references across the module and flags names
// used beyond the threshold.
func (d *NameDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	usages := make(map[string]*nameUsage)

	unit.Tree.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeName || n.Name == "" || reservedSelfNames[n.Name] {
			return true
		}
		u, ok := usages[n.Name]
		if !ok {
			u = &nameUsage{firstLine: n.Location.StartLine, firstCol: n.Location.StartCol}
			usages[n.Name] = u
		}
		u.count++
		return true
	})

	names := make([]string, 0, len(usages))
	for name := range usages {
		names = append(names, name)
	}
	sort.Strings(names)

	var violations []*domain.Violation
	for _, name := range names {
		u := usages[name]
		if u.count <= thresholds.NameUsageThreshold {
			continue
		}

		v := domain.NewViolation(
			domain.CategoryName,
			domain.SeverityMedium,
			unit.Path,
			u.firstLine,
			u.firstCol,
			fmt.Sprintf("identifier '%s' is referenced %d times (max %d); renaming it couples many sites", name, u.count, thresholds.NameUsageThreshold),
		)
		v.Remediation = fmt.Sprintf("Narrow the scope of '%s' or split its responsibilities so fewer sites share the name", name)
		v.CodeSnippet = unit.Snippet(u.firstLine)
		v.Weight = float64(u.count) / float64(thresholds.NameUsageThreshold)
		v.Context = map[string]interface{}{
			"identifier":  name,
			"usage_count": u.count,
			"threshold":   thresholds.NameUsageThreshold,
		}
		violations = append(violations, v)
	}
	return violations
}
