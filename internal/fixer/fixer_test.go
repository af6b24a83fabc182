package fixer

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
	"github.com/ludo-technologies/conscan/internal/testutil"
)

func analyzeSource(t *testing.T, source string) (*analyzer.SourceUnit, []*domain.Violation) {
	t.Helper()
	tree := testutil.CreateTestAST(t, source)
	unit := &analyzer.SourceUnit{
		Path:        "test.py",
		Language:    domain.LanguagePython,
		Lines:       parser.SplitLines([]byte(source)),
		Tree:        tree,
		Fingerprint: domain.SourceFingerprint([]byte(source)),
	}
	th := config.DefaultConfig().Thresholds
	violations, _ := analyzer.NewOrchestrator().Analyze(unit, &th)
	return unit, violations
}

func TestMagicLiteralExtraction(t *testing.T) {
	unit, violations := analyzeSource(t, `threshold = 987654
`)

	suggestions := NewGenerator().Propose(unit, violations)
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}

	s := suggestions[0]
	if s.Confidence <= 0.7 {
		t.Errorf("a large named integer should score above 0.7, got %.2f", s.Confidence)
	}
	if s.Safety != domain.SafetyLevelSafe {
		t.Errorf("constant extraction is safe, got %s", s.Safety)
	}
	if !strings.Contains(s.NewCode, "DEFAULT_THRESHOLD") {
		t.Errorf("expected the constant name in the patch, got %q", s.NewCode)
	}
	if s.ExtraLines[1] != "DEFAULT_THRESHOLD = 987654" {
		t.Errorf("expected the constant definition as an extra line, got %v", s.ExtraLines)
	}
}

func TestCredentialEnvExtraction(t *testing.T) {
	unit, violations := analyzeSource(t, `password = "hunter2"
`)

	suggestions := NewGenerator().Propose(unit, violations)
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}

	s := suggestions[0]
	if s.Safety != domain.SafetyLevelModerate {
		t.Errorf("env extraction needs deployment changes, expected moderate, got %s", s.Safety)
	}
	if !strings.Contains(s.NewCode, `os.environ["PASSWORD"]`) {
		t.Errorf("expected an environment lookup, got %q", s.NewCode)
	}
	if s.ExtraLines[1] != "import os" {
		t.Errorf("expected the os import as an extra line, got %v", s.ExtraLines)
	}
}

func TestParameterBombKeywordOnly(t *testing.T) {
	unit, violations := analyzeSource(t, `def configure(host, port, timeout, retries):
    pass
`)

	var positional *domain.Violation
	for _, v := range violations {
		if v.Category == domain.CategoryPosition {
			positional = v
		}
	}
	if positional == nil {
		t.Fatal("expected a position violation to fix")
	}

	s := NewParameterBombFixer().Propose(unit, positional)
	if s == nil {
		t.Fatal("expected a keyword-only suggestion")
	}
	if !strings.Contains(s.NewCode, "*") {
		t.Errorf("expected a keyword-only marker in the rewrite, got %q", s.NewCode)
	}
	if s.Safety != domain.SafetyLevelModerate {
		t.Errorf("call sites must change, expected moderate, got %s", s.Safety)
	}
}

func TestGeneratorOneSuggestionPerViolation(t *testing.T) {
	unit, violations := analyzeSource(t, `limit = 987654
ceiling = 555777
`)

	suggestions := NewGenerator().Propose(unit, violations)
	seen := make(map[string]bool)
	for _, s := range suggestions {
		if seen[s.ViolationID] {
			t.Errorf("violation %s got more than one suggestion", s.ViolationID)
		}
		seen[s.ViolationID] = true
	}
}

func TestApplierAppliesSafePatch(t *testing.T) {
	source := "threshold = 987654\n"
	unit, violations := analyzeSource(t, source)
	suggestions := NewGenerator().Propose(unit, violations)

	policy := domain.SafetyPolicy{ConfidenceThreshold: 0.7, MaxSafety: domain.SafetyLevelSafe}
	result := NewApplier().Apply("test.py", []byte(source), suggestions, policy)

	if len(result.Applied) != 1 {
		t.Fatalf("expected 1 applied patch, got %d applied / %d skipped", len(result.Applied), len(result.Skipped))
	}
	if !strings.Contains(result.NewSource, "DEFAULT_THRESHOLD = 987654") {
		t.Errorf("expected the constant definition in the new source:\n%s", result.NewSource)
	}
	if !strings.Contains(result.NewSource, "threshold = DEFAULT_THRESHOLD") {
		t.Errorf("expected the rewritten assignment in the new source:\n%s", result.NewSource)
	}
}

func TestApplierPolicySkips(t *testing.T) {
	source := "password = \"hunter2\"\n"
	unit, violations := analyzeSource(t, source)
	suggestions := NewGenerator().Propose(unit, violations)

	// Moderate patch, safe-only policy
	policy := domain.SafetyPolicy{ConfidenceThreshold: 0.5, MaxSafety: domain.SafetyLevelSafe}
	result := NewApplier().Apply("test.py", []byte(source), suggestions, policy)

	if len(result.Applied) != 0 {
		t.Error("a moderate patch must not apply under a safe-only policy")
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped patch, got %d", len(result.Skipped))
	}
	if result.NewSource != source {
		t.Error("skipped runs must leave the source untouched")
	}
}

func TestApplierStaleSpanSkipped(t *testing.T) {
	patch := &domain.PatchSuggestion{
		ViolationID: "v1",
		Confidence:  0.9,
		Safety:      domain.SafetyLevelSafe,
		FilePath:    "test.py",
		StartLine:   1,
		EndLine:     1,
		OldCode:     "x = 42",
		NewCode:     "x = ANSWER",
	}

	source := "y = 13\n"
	policy := domain.SafetyPolicy{ConfidenceThreshold: 0.5, MaxSafety: domain.SafetyLevelRisky}
	result := NewApplier().Apply("test.py", []byte(source), []*domain.PatchSuggestion{patch}, policy)

	if len(result.Applied) != 0 {
		t.Error("a patch whose span no longer matches must not apply")
	}
	if result.NewSource != source {
		t.Error("source must stay untouched when nothing applies")
	}
}

func TestApplierRollbackOnBrokenResult(t *testing.T) {
	patch := &domain.PatchSuggestion{
		ViolationID: "v1",
		Confidence:  0.9,
		Safety:      domain.SafetyLevelSafe,
		FilePath:    "test.py",
		StartLine:   1,
		EndLine:     1,
		OldCode:     "x = 1",
		NewCode:     "def broken(:",
	}

	source := "x = 1\n"
	policy := domain.SafetyPolicy{ConfidenceThreshold: 0.5, MaxSafety: domain.SafetyLevelRisky}
	result := NewApplier().Apply("test.py", []byte(source), []*domain.PatchSuggestion{patch}, policy)

	if len(result.RolledBack) != 1 {
		t.Fatalf("expected the broken patch rolled back, got %d", len(result.RolledBack))
	}
	if result.NewSource != source {
		t.Error("rollback must restore the original source")
	}
}

func TestApplierNonOverlappingSelection(t *testing.T) {
	lower := &domain.PatchSuggestion{
		ViolationID: "low", Confidence: 0.6, Safety: domain.SafetyLevelSafe,
		FilePath: "test.py", StartLine: 1, EndLine: 1,
		OldCode: "x = 42", NewCode: "x = LOW",
	}
	higher := &domain.PatchSuggestion{
		ViolationID: "high", Confidence: 0.9, Safety: domain.SafetyLevelSafe,
		FilePath: "test.py", StartLine: 1, EndLine: 1,
		OldCode: "x = 42", NewCode: "x = HIGH",
	}

	source := "x = 42\nHIGH = 1\nLOW = 2\n"
	policy := domain.SafetyPolicy{ConfidenceThreshold: 0.5, MaxSafety: domain.SafetyLevelRisky}
	result := NewApplier().Apply("test.py", []byte(source), []*domain.PatchSuggestion{lower, higher}, policy)

	if len(result.Applied) != 1 || result.Applied[0].Patch != higher {
		t.Fatalf("the higher-confidence patch should win, got %+v", result.Applied)
	}
	foundOverlap := false
	for _, out := range result.Skipped {
		if out.Patch == lower && strings.Contains(out.Reason, "overlaps") {
			foundOverlap = true
		}
	}
	if !foundOverlap {
		t.Error("the losing overlap should be reported as skipped")
	}
}

func TestParameterBombTypedAnnotation(t *testing.T) {
	unit, violations := analyzeSource(t, `def send(host, port, timeout, retries, payload, verbose):
    if port == 8080:
        return retries + 1
    return 0
`)

	var positional *domain.Violation
	for _, v := range violations {
		if v.Category == domain.CategoryPosition {
			positional = v
		}
	}
	if positional == nil {
		t.Fatal("expected a position violation to fix")
	}

	s := NewParameterBombFixer().Propose(unit, positional)
	if s == nil {
		t.Fatal("expected a typed-annotation suggestion")
	}
	if s.Safety != domain.SafetyLevelSafe {
		t.Errorf("annotations never break call sites, expected safe, got %s", s.Safety)
	}
	if !strings.Contains(s.NewCode, "port: int") {
		t.Errorf("expected the inferred annotation in the rewrite, got %q", s.NewCode)
	}
	if strings.Contains(s.NewCode, "*") {
		t.Errorf("the annotation arm must not reorder parameters, got %q", s.NewCode)
	}
}

func TestParameterBombAnnotationFallsBackToKeywordOnly(t *testing.T) {
	unit, violations := analyzeSource(t, `def wire(a, b, c, d, e, f):
    pass
`)

	var positional *domain.Violation
	for _, v := range violations {
		if v.Category == domain.CategoryPosition {
			positional = v
		}
	}
	if positional == nil {
		t.Fatal("expected a position violation to fix")
	}

	s := NewParameterBombFixer().Propose(unit, positional)
	if s == nil {
		t.Fatal("expected a fallback suggestion")
	}
	if !strings.Contains(s.NewCode, "*") {
		t.Errorf("with nothing to infer the keyword-only rewrite applies, got %q", s.NewCode)
	}
	if s.Safety != domain.SafetyLevelModerate {
		t.Errorf("keyword-only rewrites change call sites, expected moderate, got %s", s.Safety)
	}
}

func TestFixNotReproposedAfterApply(t *testing.T) {
	source := "threshold = 987654\n"
	unit, violations := analyzeSource(t, source)
	suggestions := NewGenerator().Propose(unit, violations)

	policy := domain.SafetyPolicy{ConfidenceThreshold: 0.7, MaxSafety: domain.SafetyLevelSafe}
	result := NewApplier().Apply("test.py", []byte(source), suggestions, policy)
	if len(result.Applied) != 1 {
		t.Fatalf("expected the patch applied, got %d applied", len(result.Applied))
	}

	patchedUnit, patchedViolations := analyzeSource(t, result.NewSource)
	again := NewGenerator().Propose(patchedUnit, patchedViolations)
	if len(again) != 0 {
		t.Errorf("re-scanning patched source must not re-propose fixes, got %d", len(again))
	}
}

func TestApplierStaleTailLineSkipped(t *testing.T) {
	patch := &domain.PatchSuggestion{
		ViolationID: "v1",
		Confidence:  0.9,
		Safety:      domain.SafetyLevelSafe,
		FilePath:    "test.py",
		StartLine:   1,
		EndLine:     2,
		OldCode:     "x = 1\ny = 2",
		NewCode:     "x, y = 1, 2",
	}

	// First line matches, second has drifted
	source := "x = 1\ny = 99\n"
	policy := domain.SafetyPolicy{ConfidenceThreshold: 0.5, MaxSafety: domain.SafetyLevelRisky}
	result := NewApplier().Apply("test.py", []byte(source), []*domain.PatchSuggestion{patch}, policy)

	if len(result.Applied) != 0 {
		t.Error("a span with a stale tail line must not apply")
	}
	if result.NewSource != source {
		t.Error("source must stay untouched when the span is stale")
	}
}
