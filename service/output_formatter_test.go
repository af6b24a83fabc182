package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/conscan/domain"
)

func sampleResult() *domain.AnalysisResult {
	v := domain.NewViolation(domain.CategoryMeaning, domain.SeverityHigh, "a.py", 3, 4, "magic literal 987654")
	v.Remediation = "extract a named constant"
	result := domain.NewAnalysisResult([]*domain.Violation{v})
	result.Summary.FilesAnalyzed = 1
	result.Summary.BySeverity = map[domain.Severity]int{domain.SeverityHigh: 1}
	return result
}

func TestFormatText(t *testing.T) {
	out, err := NewOutputFormatter(false).Format(sampleResult(), domain.OutputFormatText)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	if !strings.Contains(out, "a.py:3:4") {
		t.Errorf("expected the violation location, got:\n%s", out)
	}
	if !strings.Contains(out, "Violations: 1") {
		t.Errorf("expected the violation count, got:\n%s", out)
	}
	if strings.Contains(out, "extract a named constant") {
		t.Error("remediation should only print with details enabled")
	}
}

func TestFormatTextWithDetails(t *testing.T) {
	out, err := NewOutputFormatter(true).Format(sampleResult(), domain.OutputFormatText)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !strings.Contains(out, "extract a named constant") {
		t.Errorf("expected the remediation line, got:\n%s", out)
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := NewOutputFormatter(false).Format(sampleResult(), domain.OutputFormatJSON)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["total_violations"] != float64(1) {
		t.Errorf("expected total_violations 1, got %v", decoded["total_violations"])
	}
}

func TestFormatYAML(t *testing.T) {
	out, err := NewOutputFormatter(false).Format(sampleResult(), domain.OutputFormatYAML)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["total_violations"] != 1 {
		t.Errorf("expected total_violations 1, got %v", decoded["total_violations"])
	}
}

func TestFormatCSV(t *testing.T) {
	out, err := NewOutputFormatter(false).Format(sampleResult(), domain.OutputFormatCSV)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a header and one record, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,category,severity") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "a.py") {
		t.Errorf("expected the violation record, got %q", lines[1])
	}
}

func TestFormatUnsupported(t *testing.T) {
	if _, err := NewOutputFormatter(false).Format(sampleResult(), "xml"); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}

func TestWriteToWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewOutputFormatter(false).Write(sampleResult(), domain.OutputFormatText, &buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected formatted output in the writer")
	}
}
