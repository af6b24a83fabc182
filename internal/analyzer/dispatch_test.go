package analyzer

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/conscan/domain"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want domain.Language
	}{
		{"app.py", domain.LanguagePython},
		{"types.pyi", domain.LanguagePython},
		{"index.js", domain.LanguageJavaScript},
		{"Widget.jsx", domain.LanguageJavaScript},
		{"mod.mjs", domain.LanguageJavaScript},
		{"api.ts", domain.LanguageTypeScript},
		{"View.tsx", domain.LanguageTypeScript},
		{"main.go", domain.LanguageGo},
		{"notes.txt", domain.LanguageUnknown},
		{"Makefile", domain.LanguageUnknown},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestDispatcherNativePython(t *testing.T) {
	source := []byte(`def rec(n):
    return rec(n - 1)
`)

	result := NewDispatcher().Analyze("app.py", source, defaultThresholds())
	if result.Language != domain.LanguagePython {
		t.Errorf("expected python, got %s", result.Language)
	}
	if result.Fallback || result.ParseFailed {
		t.Error("native parse should not fall back or fail")
	}
	if result.Unit == nil {
		t.Fatal("expected a populated source unit")
	}
	if len(byCategory(result.Violations, domain.CategoryAlgorithm)) == 0 {
		t.Error("expected the recursion finding to surface")
	}
}

func TestDispatcherParseFailureBecomesFinding(t *testing.T) {
	result := NewDispatcher().Analyze("broken.py", []byte("def broken(:\n"), defaultThresholds())

	if !result.ParseFailed {
		t.Fatal("expected ParseFailed for invalid syntax")
	}
	if len(result.Violations) != 1 {
		t.Fatalf("expected exactly 1 parse finding, got %d", len(result.Violations))
	}
	v := result.Violations[0]
	if v.Severity != domain.SeverityCritical {
		t.Errorf("parse failures are critical, got %s", v.Severity)
	}
	if !strings.Contains(v.Description, "could not be parsed") {
		t.Errorf("unexpected description: %q", v.Description)
	}
}

func TestDispatcherJavaScriptStructured(t *testing.T) {
	source := []byte(`function add(a, b, c, d, e) {
  return a + b + c + d + e;
}
`)

	result := NewDispatcher().Analyze("math.js", source, defaultThresholds())
	if result.Language != domain.LanguageJavaScript {
		t.Errorf("expected javascript, got %s", result.Language)
	}
	if result.Fallback {
		t.Error("javascript has a structured provider, should not fall back")
	}
	if len(byCategory(result.Violations, domain.CategoryPosition)) != 1 {
		t.Errorf("expected the 5-parameter function to be flagged, got %v", result.Violations)
	}
}

func TestDispatcherUnknownLanguageFallsBack(t *testing.T) {
	source := []byte(`local threshold = 987654
function compute(a, b, c, d, e)
    return a
end
`)

	result := NewDispatcher().Analyze("script.lua", source, defaultThresholds())
	if !result.Fallback {
		t.Fatal("unknown extensions should use the heuristic fallback")
	}
	if len(byCategory(result.Violations, domain.CategoryMeaning)) == 0 {
		t.Error("expected the heuristic magic-literal finding")
	}
	if len(byCategory(result.Violations, domain.CategoryPosition)) == 0 {
		t.Error("expected the heuristic parameter-bomb finding")
	}
}

func TestFallbackNeverFails(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("\x00\x01\x02 binary junk \xff"),
		[]byte(strings.Repeat("x", 100000)),
	}
	for _, source := range inputs {
		result := AnalyzeFallback("blob.bin", source, defaultThresholds())
		if result == nil {
			t.Fatal("fallback must always return a result")
		}
		if !result.Fallback {
			t.Error("fallback results must be marked as such")
		}
	}
}

func TestFallbackSkipsComments(t *testing.T) {
	source := []byte(`# threshold is 987654 by contract
-- legacy 123456 note
real = 555777
`)

	result := AnalyzeFallback("config.txt", source, defaultThresholds())
	for _, v := range result.Violations {
		if v.Line == 1 || v.Line == 2 {
			t.Errorf("comment lines must not be scanned: %s", v)
		}
	}
	if len(result.Violations) == 0 {
		t.Error("expected the literal on the code line to be flagged")
	}
}

func TestFallbackLongLine(t *testing.T) {
	source := []byte("value = " + strings.Repeat("a", 130) + "\n")

	result := AnalyzeFallback("data.cfg", source, defaultThresholds())
	found := false
	for _, v := range result.Violations {
		if v.Severity == domain.SeverityInfo {
			found = true
		}
	}
	if !found {
		t.Error("expected an info finding for the long line")
	}
}
