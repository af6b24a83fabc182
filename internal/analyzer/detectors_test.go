package analyzer

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/conscan/domain"
)

func TestExecutionLifecycleClass(t *testing.T) {
	unit := newTestUnit(t, `class Channel:
    def connect(self):
        pass

    def send(self, data):
        pass

    def close(self):
        pass
`)

	violations := NewExecutionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Severity != domain.SeverityMedium {
		t.Errorf("expected medium severity, got %s", v.Severity)
	}
	if v.ClassName != "Channel" {
		t.Errorf("expected class 'Channel', got %q", v.ClassName)
	}
	if v.Context["public_methods"] != 1 {
		t.Errorf("expected 1 public method, got %v", v.Context["public_methods"])
	}
}

func TestExecutionLifecycleOnlyClassPasses(t *testing.T) {
	unit := newTestUnit(t, `class Closer:
    def open(self):
        pass

    def close(self):
        pass
`)

	violations := NewExecutionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("no public methods between lifecycle calls, got %d violations", len(violations))
	}
}

func TestValueSharedMutableAttribute(t *testing.T) {
	unit := newTestUnit(t, `class Registry:
    def __init__(self):
        self.entries = []

    def merge(self, extra):
        self.entries = extra + self.entries
`)

	violations := NewValueDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Context["attribute"] != "entries" {
		t.Errorf("expected attribute 'entries', got %v", v.Context["attribute"])
	}
	writers, _ := v.Context["writers"].([]string)
	if len(writers) != 2 {
		t.Errorf("expected 2 writers, got %v", writers)
	}
}

func TestValueSingleWriterPasses(t *testing.T) {
	unit := newTestUnit(t, `class Registry:
    def __init__(self):
        self.entries = []

    def count(self):
        return len(self.entries)
`)

	violations := NewValueDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("a single writer should pass, got %d violations", len(violations))
	}
}

func TestValueImmutableAttributePasses(t *testing.T) {
	unit := newTestUnit(t, `class Counter:
    def __init__(self):
        self.total = None

    def reset(self):
        self.total = None
`)

	violations := NewValueDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("non-collection attributes should pass, got %d violations", len(violations))
	}
}

func TestTimingSleepCall(t *testing.T) {
	unit := newTestUnit(t, `import time


def poll():
    time.sleep(5)
`)

	violations := NewTimingDetector().Detect(unit, defaultThresholds())
	var found *domain.Violation
	for _, v := range violations {
		if v.Severity == domain.SeverityHigh {
			found = v
		}
	}
	if found == nil {
		t.Fatal("expected a high-severity sleep violation")
	}
	if !strings.Contains(found.Description, "sleep") {
		t.Errorf("description should mention sleep, got %q", found.Description)
	}
}

func TestTimingAllocationOutsideInit(t *testing.T) {
	unit := newTestUnit(t, `def process(items):
    buffer = list(items)
    return buffer
`)

	violations := NewTimingDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if violations[0].Severity != domain.SeverityLow {
		t.Errorf("allocation findings are low, got %s", violations[0].Severity)
	}
}

func TestTimingAllocationInInitAllowed(t *testing.T) {
	unit := newTestUnit(t, `class Pool:
    def __init__(self):
        self.slots = list(range(8))
`)

	violations := NewTimingDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("allocation inside __init__ is allowed, got %d violations", len(violations))
	}
}

func TestNameHighFanInIdentifier(t *testing.T) {
	var b strings.Builder
	b.WriteString("def busy(shared):\n")
	for i := 0; i < 9; i++ {
		b.WriteString("    shared = shared + 1\n")
	}
	b.WriteString("    return shared\n")

	unit := newTestUnit(t, b.String())
	violations := NewNameDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Context["identifier"] != "shared" {
		t.Errorf("expected identifier 'shared', got %v", v.Context["identifier"])
	}
	if v.Severity != domain.SeverityMedium {
		t.Errorf("expected medium severity, got %s", v.Severity)
	}
}

func TestNameSelfNotCounted(t *testing.T) {
	var b strings.Builder
	b.WriteString("class C:\n    def m(self):\n")
	for i := 0; i < 12; i++ {
		b.WriteString("        self.x = 1\n")
	}

	unit := newTestUnit(t, b.String())
	violations := NewNameDetector().Detect(unit, defaultThresholds())
	for _, v := range violations {
		if v.Context["identifier"] == "self" {
			t.Error("self should never be counted as fan-in")
		}
	}
}

func TestTypeHintMissingAnnotations(t *testing.T) {
	unit := newTestUnit(t, `def transform(data, factor):
    return data * factor
`)

	violations := NewTypeHintDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if violations[0].Severity != domain.SeverityLow {
		t.Errorf("missing hints are low severity, got %s", violations[0].Severity)
	}
}

func TestTypeHintAnnotatedPasses(t *testing.T) {
	unit := newTestUnit(t, `def transform(data: bytes, factor: int) -> bytes:
    return data * factor
`)

	violations := NewTypeHintDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("annotated functions pass, got %d violations", len(violations))
	}
}

func TestTypeHintPrivateFunctionSkipped(t *testing.T) {
	unit := newTestUnit(t, `def _helper(data, factor):
    return data * factor
`)

	violations := NewTypeHintDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("private functions are skipped, got %d violations", len(violations))
	}
}

func TestIdentityMutableDefault(t *testing.T) {
	unit := newTestUnit(t, `def collect(item, bucket=[]):
    bucket.append(item)
    return bucket
`)

	violations := NewIdentityDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Severity != domain.SeverityHigh {
		t.Errorf("mutable defaults are high, got %s", v.Severity)
	}
}

func TestIdentityNoneDefaultPasses(t *testing.T) {
	unit := newTestUnit(t, `def collect(item, bucket=None):
    return bucket
`)

	violations := NewIdentityDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("None defaults pass, got %d violations", len(violations))
	}
}

func TestIdentityComparisonAgainstObject(t *testing.T) {
	unit := newTestUnit(t, `def same(a, b):
    return a is b
`)

	violations := NewIdentityDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if violations[0].Severity != domain.SeverityMedium {
		t.Errorf("identity comparisons are medium, got %s", violations[0].Severity)
	}
}

func TestIdentityIsNonePasses(t *testing.T) {
	unit := newTestUnit(t, `def check(a):
    return a is None
`)

	violations := NewIdentityDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("comparing against None is the idiom, got %d violations", len(violations))
	}
}

func TestIdentityGlobalBindings(t *testing.T) {
	unit := newTestUnit(t, `alpha = 0
beta = 0
gamma = 0
delta = 0
epsilon = 0
zeta = 0
`)

	violations := NewIdentityDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation for 6 globals, got %d", len(violations))
	}
	v := violations[0]
	if v.Severity != domain.SeverityHigh {
		t.Errorf("expected high severity, got %s", v.Severity)
	}
	if v.Locality != domain.LocalityCrossModule {
		t.Errorf("global state couples across modules, got %s", v.Locality)
	}
}

func TestIdentityConstantsNotGlobals(t *testing.T) {
	unit := newTestUnit(t, `ALPHA = 0
BETA = 0
GAMMA = 0
DELTA = 0
EPSILON = 0
ZETA = 0
`)

	violations := NewIdentityDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("UPPER_SNAKE constants are not mutable globals, got %d", len(violations))
	}
}
