package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// TimingDetector flags temporal-ordering hazards: sleeps, blocking
// synchronization calls, and heap growth after initialization.
type TimingDetector struct{}

// NewTimingDetector creates a new TimingDetector
func NewTimingDetector() *TimingDetector {
	return &TimingDetector{}
}

// Category identifies the connascence kind this detector emits
func (d *TimingDetector) Category() domain.Category {
	return domain.CategoryTiming
}

var sleepCalls = map[string]bool{
	"sleep": true,
}

var syncCalls = map[string]bool{
	"join":    true,
	"wait":    true,
	"acquire": true,
	"release": true,
	"notify":  true,
	"lock":    true,
}

// allocationCalls are constructors that grow the heap. Outside an
// initialization function they break the no-heap-growth-after-init rule.
var allocationCalls = map[string]bool{
	"list":      true,
	"dict":      true,
	"set":       true,
	"bytearray": true,
	"deque":     true,
	"array":     true,
	"zeros":     true,
	"ones":      true,
	"empty":     true,
	"malloc":    true,
}

// Detect flags sleep/synchronization calls everywhere and allocation
// calls outside recognized initialization functions.
func (d *TimingDetector) Detect(unit *SourceUnit, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation

	unit.Tree.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeCall || n.Name == "" {
			return true
		}

		switch {
		case sleepCalls[n.Name]:
			v := domain.NewViolation(
				domain.CategoryTiming,
				domain.SeverityHigh,
				unit.Path,
				n.Location.StartLine,
				n.Location.StartCol,
				"sleep call couples correctness to wall-clock timing",
			)
			v.Remediation = "Replace the sleep with an event, condition variable or explicit completion signal"
			v.CodeSnippet = unit.Snippet(n.Location.StartLine)
			v.Context = map[string]interface{}{"call": n.Name}
			attachScope(v, n)
			violations = append(violations, v)

		case syncCalls[n.Name]:
			v := domain.NewViolation(
				domain.CategoryTiming,
				domain.SeverityMedium,
				unit.Path,
				n.Location.StartLine,
				n.Location.StartCol,
				fmt.Sprintf("synchronization call '%s' imposes a temporal ordering on callers", n.Name),
			)
			v.Remediation = "Encapsulate the synchronization so a single owner controls ordering"
			v.CodeSnippet = unit.Snippet(n.Location.StartLine)
			v.Context = map[string]interface{}{"call": n.Name}
			attachScope(v, n)
			violations = append(violations, v)

		case allocationCalls[n.Name]:
			if v := d.checkAllocation(unit, n, thresholds); v != nil {
				violations = append(violations, v)
			}
		}
		return true
	})

	return violations
}

// checkAllocation flags dynamic allocation outside the initialization
// set. Module-level allocation counts as initialization.
func (d *TimingDetector) checkAllocation(unit *SourceUnit, call *parser.Node, thresholds *config.ThresholdConfig) *domain.Violation {
	fn := call.EnclosingFunction()
	if fn == nil {
		return nil
	}
	if thresholds.IsInitFunction(fn.Name) {
		return nil
	}

	v := domain.NewViolation(
		domain.CategoryTiming,
		domain.SeverityLow,
		unit.Path,
		call.Location.StartLine,
		call.Location.StartCol,
		fmt.Sprintf("dynamic allocation '%s' in '%s', which is not an initialization function", call.Name, fn.Name),
	)
	v.Remediation = "Allocate during initialization and reuse the buffer, or register the function as an initializer"
	v.CodeSnippet = unit.Snippet(call.Location.StartLine)
	v.Context = map[string]interface{}{
		"call":     call.Name,
		"function": fn.Name,
	}
	attachScope(v, call)
	return v
}
