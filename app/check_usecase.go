package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/version"
)

// CheckBudget is the quality gate applied by the check use case
type CheckBudget struct {
	// MaxCritical is the highest tolerated critical-violation count
	MaxCritical int

	// MaxHigh is the highest tolerated high-violation count; negative
	// disables the rule
	MaxHigh int

	// MinQualityScore is the lowest acceptable overall quality score
	MinQualityScore float64
}

// DefaultCheckBudget fails on any critical violation
func DefaultCheckBudget() CheckBudget {
	return CheckBudget{MaxCritical: 0, MaxHigh: -1, MinQualityScore: 0}
}

// CheckUseCase runs analysis and applies a budget, producing an exit
// code for CI gates.
type CheckUseCase struct {
	analyze *AnalyzeUseCase
}

// NewCheckUseCase creates a new check use case
func NewCheckUseCase() *CheckUseCase {
	return &CheckUseCase{analyze: NewAnalyzeUseCase()}
}

// Execute analyzes the request paths and evaluates the budget
func (uc *CheckUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest, budget CheckBudget) (*domain.CheckResult, error) {
	start := time.Now()

	// The gate reads the raw result; formatting is suppressed
	req.OutputWriter = nil
	result, err := uc.analyze.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	critical := result.Summary.BySeverity[domain.SeverityCritical]
	high := result.Summary.BySeverity[domain.SeverityHigh]
	quality := 0.0
	if result.Metrics != nil {
		quality = result.Metrics.OverallQualityScore
	}

	check := &domain.CheckResult{
		Passed: true,
		Summary: domain.CheckSummary{
			FilesAnalyzed:      result.Summary.FilesAnalyzed,
			TotalViolations:    result.TotalViolations,
			CriticalViolations: critical,
			HighViolations:     high,
			QualityScore:       quality,
		},
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}

	if critical > budget.MaxCritical {
		check.Violations = append(check.Violations, domain.CheckViolation{
			Rule:      "max-critical",
			Severity:  "error",
			Message:   fmt.Sprintf("%d critical violations exceed the budget of %d", critical, budget.MaxCritical),
			Actual:    strconv.Itoa(critical),
			Threshold: strconv.Itoa(budget.MaxCritical),
		})
	}
	if budget.MaxHigh >= 0 && high > budget.MaxHigh {
		check.Violations = append(check.Violations, domain.CheckViolation{
			Rule:      "max-high",
			Severity:  "error",
			Message:   fmt.Sprintf("%d high violations exceed the budget of %d", high, budget.MaxHigh),
			Actual:    strconv.Itoa(high),
			Threshold: strconv.Itoa(budget.MaxHigh),
		})
	}
	if budget.MinQualityScore > 0 && quality < budget.MinQualityScore {
		check.Violations = append(check.Violations, domain.CheckViolation{
			Rule:      "min-quality-score",
			Severity:  "error",
			Message:   fmt.Sprintf("quality score %.2f is below the required %.2f", quality, budget.MinQualityScore),
			Actual:    fmt.Sprintf("%.2f", quality),
			Threshold: fmt.Sprintf("%.2f", budget.MinQualityScore),
		})
	}

	if len(check.Violations) > 0 {
		check.Passed = false
		check.ExitCode = 1
	}
	check.Duration = time.Since(start).Milliseconds()
	return check, nil
}
