package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/conscan/domain"
)

// OutputFormatterImpl implements domain.OutputFormatter
type OutputFormatterImpl struct {
	// ShowDetails includes code snippets and remediation in text output
	ShowDetails bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(showDetails bool) *OutputFormatterImpl {
	return &OutputFormatterImpl{ShowDetails: showDetails}
}

// Format formats the analysis result according to the specified format
func (f *OutputFormatterImpl) Format(result *domain.AnalysisResult, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText, "":
		return f.formatText(result), nil
	case domain.OutputFormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", domain.NewOutputError("failed to encode JSON", err)
		}
		return string(data), nil
	case domain.OutputFormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", domain.NewOutputError("failed to encode YAML", err)
		}
		return string(data), nil
	case domain.OutputFormatCSV:
		return f.formatCSV(result)
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer
func (f *OutputFormatterImpl) Write(result *domain.AnalysisResult, format domain.OutputFormat, writer io.Writer) error {
	output, err := f.Format(result, format)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(writer, output); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

func (f *OutputFormatterImpl) formatText(result *domain.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString("Connascence Analysis\n")
	sb.WriteString("====================\n\n")

	for _, v := range result.Violations {
		sb.WriteString(fmt.Sprintf("%s:%d:%d  [%s/%s]  %s\n",
			v.FilePath, v.Line, v.Column, v.Severity, v.Category, v.Description))
		if f.ShowDetails {
			if v.CodeSnippet != "" {
				sb.WriteString("    > " + v.CodeSnippet + "\n")
			}
			if v.Remediation != "" {
				sb.WriteString("    fix: " + v.Remediation + "\n")
			}
		}
	}
	if len(result.Violations) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Files analyzed: %d", result.Summary.FilesAnalyzed))
	if result.Summary.FilesFailed > 0 {
		sb.WriteString(fmt.Sprintf(" (%d failed)", result.Summary.FilesFailed))
	}
	sb.WriteString(fmt.Sprintf("\nViolations: %d\n", result.TotalViolations))

	if len(result.Summary.BySeverity) > 0 {
		sb.WriteString("By severity: " + formatCounts(result.Summary.BySeverity) + "\n")
	}

	if result.Metrics != nil {
		sb.WriteString(fmt.Sprintf("\nConnascence index: %.2f\n", result.Metrics.ConnascenceIndex))
		sb.WriteString(fmt.Sprintf("Compliance score:  %.2f\n", result.Metrics.RuleComplianceScore))
		sb.WriteString(fmt.Sprintf("Duplication score: %.2f\n", result.Metrics.DuplicationScore))
		sb.WriteString(fmt.Sprintf("Overall quality:   %.2f\n", result.Metrics.OverallQualityScore))
	}

	if result.Baseline != nil {
		direction := "regressed"
		if result.Baseline.Improved {
			direction = "improved"
		}
		sb.WriteString(fmt.Sprintf("\nBaseline: %s (quality %+.3f, violations %+d)\n",
			direction, result.Baseline.QualityDelta, result.Baseline.ViolationDelta))
	}

	for _, w := range result.Warnings {
		sb.WriteString("warning: " + w + "\n")
	}
	return sb.String()
}

func (f *OutputFormatterImpl) formatCSV(result *domain.AnalysisResult) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := []string{"id", "category", "severity", "file", "line", "column", "function", "class", "description"}
	if err := w.Write(header); err != nil {
		return "", domain.NewOutputError("failed to write CSV header", err)
	}
	for _, v := range result.Violations {
		record := []string{
			v.ID,
			string(v.Category),
			string(v.Severity),
			v.FilePath,
			strconv.Itoa(v.Line),
			strconv.Itoa(v.Column),
			v.FunctionName,
			v.ClassName,
			v.Description,
		}
		if err := w.Write(record); err != nil {
			return "", domain.NewOutputError("failed to write CSV record", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", domain.NewOutputError("failed to flush CSV", err)
	}
	return sb.String(), nil
}

// formatCounts renders a severity map as "critical=1 high=2", highest
// severity first.
func formatCounts(counts map[domain.Severity]int) string {
	type pair struct {
		severity domain.Severity
		count    int
	}
	pairs := make([]pair, 0, len(counts))
	for severity, count := range counts {
		pairs = append(pairs, pair{severity, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].severity.Level() > pairs[j].severity.Level()
	})

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%d", p.severity, p.count))
	}
	return strings.Join(parts, " ")
}
