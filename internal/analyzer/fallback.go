package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// maxHeuristicLineLength is the long-line ceiling for the text-only path
const maxHeuristicLineLength = 120

var (
	numericLiteralRe = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	functionDefRe    = regexp.MustCompile(`\b(?:def|function|func|fn|sub|proc)\s+\w+\s*\(([^)]*)\)`)
	commentPrefixes  = []string{"#", "//", "--", ";", "*", "/*"}
)

// AnalyzeFallback runs the line-oriented heuristic detectors over a file
// no structured parser handles. It never fails; it returns a possibly
// empty violation list.
func AnalyzeFallback(path string, source []byte, thresholds *config.ThresholdConfig) *DispatchResult {
	lines := parser.SplitLines(source)
	var violations []*domain.Violation

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}

		violations = append(violations, fallbackMagicLiterals(path, lineNo, trimmed, thresholds)...)
		if v := fallbackParameterBomb(path, lineNo, trimmed, thresholds); v != nil {
			violations = append(violations, v)
		}
		if len(line) > maxHeuristicLineLength {
			v := domain.NewViolation(
				domain.CategoryAlgorithm,
				domain.SeverityInfo,
				path, lineNo, 0,
				fmt.Sprintf("line is %d characters long (max %d)", len(line), maxHeuristicLineLength),
			)
			v.Remediation = "Wrap or split the line"
			v.CodeSnippet = truncateLine(trimmed)
			violations = append(violations, v)
		}
	}

	violations = domain.DeduplicateViolations(violations)
	domain.SortViolations(violations, domain.SortByLocation)
	return &DispatchResult{
		Language:   domain.LanguageUnknown,
		Violations: violations,
		Fallback:   true,
	}
}

func fallbackMagicLiterals(path string, lineNo int, line string, thresholds *config.ThresholdConfig) []*domain.Violation {
	var violations []*domain.Violation
	for _, match := range numericLiteralRe.FindAllStringIndex(line, -1) {
		literal := line[match[0]:match[1]]
		if thresholds.IsLiteralException(literal) {
			continue
		}
		v := domain.NewViolation(
			domain.CategoryMeaning,
			domain.SeverityLow,
			path, lineNo, match[0],
			fmt.Sprintf("magic literal %s; its meaning is not named", literal),
		)
		v.Remediation = "Extract the value into a named constant"
		v.CodeSnippet = truncateLine(line)
		v.Context = map[string]interface{}{"literal": literal, "heuristic": true}
		violations = append(violations, v)
	}
	return violations
}

func fallbackParameterBomb(path string, lineNo int, line string, thresholds *config.ThresholdConfig) *domain.Violation {
	match := functionDefRe.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	params := strings.TrimSpace(match[1])
	if params == "" {
		return nil
	}
	count := 0
	for _, p := range strings.Split(params, ",") {
		name := strings.TrimSpace(p)
		if name == "" || name == "self" || name == "cls" || strings.HasPrefix(name, "*") {
			continue
		}
		count++
	}
	if count <= thresholds.MaxPositionalParams {
		return nil
	}

	v := domain.NewViolation(
		domain.CategoryPosition,
		domain.SeverityHigh,
		path, lineNo, 0,
		fmt.Sprintf("function takes %d positional parameters (max %d)", count, thresholds.MaxPositionalParams),
	)
	v.Remediation = "Group related parameters into a single structured argument"
	v.CodeSnippet = truncateLine(line)
	v.Context = map[string]interface{}{
		"parameter_count": count,
		"threshold":       thresholds.MaxPositionalParams,
		"heuristic":       true,
	}
	return v
}

func isCommentLine(trimmed string) bool {
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func truncateLine(line string) string {
	const max = 160
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
