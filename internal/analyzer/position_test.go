package analyzer

import (
	"testing"

	"github.com/ludo-technologies/conscan/domain"
)

func TestPositionParameterBomb(t *testing.T) {
	unit := newTestUnit(t, `def configure(a, b, c, d, e, f, g, h, i, j):
    pass
`)

	violations := NewPositionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected exactly 1 violation, got %d", len(violations))
	}

	v := violations[0]
	if v.Severity != domain.SeverityHigh {
		t.Errorf("expected high severity, got %s", v.Severity)
	}
	if v.Context["parameter_count"] != 10 {
		t.Errorf("expected parameter_count 10, got %v", v.Context["parameter_count"])
	}
	if v.Context["threshold"] != 3 {
		t.Errorf("expected threshold 3, got %v", v.Context["threshold"])
	}
	if v.FunctionName != "configure" {
		t.Errorf("expected function name 'configure', got %q", v.FunctionName)
	}
}

func TestPositionAtThresholdPasses(t *testing.T) {
	unit := newTestUnit(t, `def f(a, b, c):
    pass
`)

	violations := NewPositionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("exactly at the threshold should pass, got %d violations", len(violations))
	}
}

func TestPositionOneOverThresholdFlags(t *testing.T) {
	unit := newTestUnit(t, `def f(a, b, c, d):
    pass
`)

	violations := NewPositionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Errorf("one over the threshold should flag, got %d violations", len(violations))
	}
}

func TestPositionReceiverAndSplatsExempt(t *testing.T) {
	unit := newTestUnit(t, `class C:
    def m(self, a, b, c, *args, **kwargs):
        pass
`)

	violations := NewPositionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("self and splats should not count, got %d violations", len(violations))
	}
}

func TestPositionCallSite(t *testing.T) {
	unit := newTestUnit(t, `build(a, b, c, d, e)
`)

	violations := NewPositionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 1 {
		t.Fatalf("expected 1 call-site violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Severity != domain.SeverityMedium {
		t.Errorf("call-site findings should be medium, got %s", v.Severity)
	}
	if v.Context["argument_count"] != 5 {
		t.Errorf("expected argument_count 5, got %v", v.Context["argument_count"])
	}
}

func TestPositionKeywordArgumentsExempt(t *testing.T) {
	unit := newTestUnit(t, `build(a, b, c=1, d=2, e=3)
`)

	violations := NewPositionDetector().Detect(unit, defaultThresholds())
	if len(violations) != 0 {
		t.Errorf("keyword arguments should not count, got %d violations", len(violations))
	}
}
