package analyzer

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/conscan/domain"
)

func TestAlgorithmDirectRecursion(t *testing.T) {
	unit := newTestUnit(t, `def rec(n):
    return rec(n - 1)
`)

	violations := NewAlgorithmDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected exactly 1 violation, got %d", len(violations))
	}

	v := violations[0]
	if v.Severity != domain.SeverityCritical {
		t.Errorf("direct recursion should be critical, got %s", v.Severity)
	}
	if v.Context["recursion"] != "direct" {
		t.Errorf("expected recursion context 'direct', got %v", v.Context["recursion"])
	}
	if v.FunctionName != "rec" {
		t.Errorf("expected function 'rec', got %q", v.FunctionName)
	}
	if v.Locality != domain.LocalitySameFunction {
		t.Errorf("expected same_function locality, got %s", v.Locality)
	}
}

func TestAlgorithmIndirectRecursion(t *testing.T) {
	unit := newTestUnit(t, `def ping(n):
    return pong(n - 1)


def pong(n):
    return ping(n - 1)
`)

	violations := NewAlgorithmDetector().Detect(unit, defaultThresholds())

	var cycle *domain.Violation
	for _, v := range violations {
		if v.Context["recursion"] == "indirect" {
			cycle = v
		}
	}
	if cycle == nil {
		t.Fatal("expected an indirect recursion violation")
	}
	if cycle.Severity != domain.SeverityHigh {
		t.Errorf("indirect recursion should be high, got %s", cycle.Severity)
	}
	path, _ := cycle.Context["cycle"].(string)
	if !strings.Contains(path, "ping") || !strings.Contains(path, "pong") {
		t.Errorf("cycle path should name both functions, got %q", path)
	}
}

func TestAlgorithmDuplicateStructure(t *testing.T) {
	unit := newTestUnit(t, `def first(x):
    y = x + 1
    if y > 0:
        return y
    return 0


def second(z):
    w = z - 5
    if w < 10:
        return w
    return 1
`)

	violations := NewAlgorithmDetector().Detect(unit, defaultThresholds())
	duplicates := make([]*domain.Violation, 0)
	for _, v := range violations {
		if _, ok := v.Context["duplicate_of"]; ok {
			duplicates = append(duplicates, v)
		}
	}

	if len(duplicates) != 1 {
		t.Fatalf("expected exactly 1 duplicate violation, got %d", len(duplicates))
	}
	v := duplicates[0]
	if v.FunctionName != "second" {
		t.Errorf("the second occurrence should be flagged, got %q", v.FunctionName)
	}
	if v.Context["duplicate_of"] != "first" {
		t.Errorf("expected link to 'first', got %v", v.Context["duplicate_of"])
	}
	if v.Context["duplicate_of_line"] != 1 {
		t.Errorf("expected original at line 1, got %v", v.Context["duplicate_of_line"])
	}
}

func TestAlgorithmStubBodiesNotDuplicates(t *testing.T) {
	unit := newTestUnit(t, `def a():
    pass


def b():
    pass
`)

	violations := NewAlgorithmDetector().Detect(unit, defaultThresholds())
	for _, v := range violations {
		if _, ok := v.Context["duplicate_of"]; ok {
			t.Errorf("bare stubs should not count as duplicates: %s", v)
		}
	}
}

func TestCyclomaticComplexity(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{
			name: "straight line",
			source: `def f():
    x = 1
    return x
`,
			want: 1,
		},
		{
			name: "single if",
			source: `def f(x):
    if x:
        return 1
    return 0
`,
			want: 2,
		},
		{
			name: "boolean operators add operand points",
			source: `def f(a, b, c):
    if a and b or c:
        return 1
    return 0
`,
			want: 4,
		},
		{
			name: "loop with conditional",
			source: `def f(items):
    for item in items:
        if item:
            return item
    return None
`,
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := newTestUnit(t, tt.source)
			fn := collectFunctions(unit.Tree)[0]
			if got := CyclomaticComplexity(fn); got != tt.want {
				t.Errorf("complexity = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAlgorithmComplexityThreshold(t *testing.T) {
	var b strings.Builder
	b.WriteString("def dense(x):\n")
	for i := 0; i < 10; i++ {
		b.WriteString("    if x:\n        x -= 1\n")
	}
	b.WriteString("    return x\n")

	unit := newTestUnit(t, b.String())
	violations := NewAlgorithmDetector().Detect(unit, defaultThresholds())

	var found *domain.Violation
	for _, v := range violations {
		if _, ok := v.Context["complexity"]; ok {
			found = v
		}
	}
	if found == nil {
		t.Fatal("expected a complexity violation for 11 decision points")
	}
	if found.Context["complexity"] != 11 {
		t.Errorf("expected complexity 11, got %v", found.Context["complexity"])
	}
	if found.Severity != domain.SeverityHigh {
		t.Errorf("expected high severity, got %s", found.Severity)
	}
}

func TestComplexityIgnoresNestedFunctions(t *testing.T) {
	unit := newTestUnit(t, `def outer(x):
    def inner(y):
        if y:
            return 1
        return 0
    return inner(x)
`)

	fns := collectFunctions(unit.Tree)
	for _, fn := range fns {
		if fn.Name == "outer" {
			if got := CyclomaticComplexity(fn); got != 1 {
				t.Errorf("outer complexity = %d, want 1 (inner scored separately)", got)
			}
		}
	}
}
