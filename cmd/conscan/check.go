package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ludo-technologies/conscan/app"
	"github.com/ludo-technologies/conscan/domain"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkMaxCritical int
	checkMaxHigh     int
	checkMinQuality  float64
	checkJSON        bool
	checkVerbose     bool
	checkConfigPath  string
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Fast quality gate for CI/CD pipelines",
		Long: `Run connascence analysis against configurable budgets for CI/CD
integration.

Exit codes:
  0 - All checks pass
  1 - Quality budget violated
  2 - Analysis error (file not found, parse error, etc.)

Examples:
  # Fail on any critical violation (default)
  conscan check src/

  # Also bound high-severity violations
  conscan check --max-high 10 src/

  # Require a minimum quality score
  conscan check --min-quality 0.8 src/

  # JSON output for machine parsing
  conscan check --json src/`,
		RunE:          runCheck,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().IntVar(&checkMaxCritical, "max-critical", 0,
		"Maximum allowed critical violations")
	cmd.Flags().IntVar(&checkMaxHigh, "max-high", -1,
		"Maximum allowed high violations (-1 disables the rule)")
	cmd.Flags().Float64Var(&checkMinQuality, "min-quality", 0,
		"Minimum overall quality score in [0,1] (0 disables the rule)")
	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output results as JSON")
	cmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &CheckExitError{Code: 2, Message: "no paths specified"}
	}

	budget := app.DefaultCheckBudget()
	budget.MaxCritical = checkMaxCritical
	budget.MaxHigh = checkMaxHigh
	budget.MinQualityScore = checkMinQuality

	req := domain.AnalyzeRequest{
		Paths:      args,
		ConfigPath: checkConfigPath,
		Recursive:  true,
	}

	useCase := app.NewCheckUseCase()
	result, err := useCase.Execute(context.Background(), req, budget)
	if err != nil {
		return &CheckExitError{Code: 2, Message: err.Error()}
	}

	if checkJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return &CheckExitError{Code: 2, Message: encErr.Error()}
		}
	} else {
		printCheckResult(result)
	}

	if !result.Passed {
		return &CheckExitError{Code: result.ExitCode}
	}
	return nil
}

func printCheckResult(result *domain.CheckResult) {
	if result.Passed {
		fmt.Printf("OK: %d files, %d violations (quality %.2f) in %dms\n",
			result.Summary.FilesAnalyzed, result.Summary.TotalViolations,
			result.Summary.QualityScore, result.Duration)
		return
	}

	fmt.Printf("FAIL: %d files, %d violations (quality %.2f)\n",
		result.Summary.FilesAnalyzed, result.Summary.TotalViolations,
		result.Summary.QualityScore)
	for _, v := range result.Violations {
		fmt.Printf("  [%s] %s\n", v.Rule, v.Message)
	}
	if checkVerbose {
		fmt.Printf("  critical=%d high=%d duration=%dms\n",
			result.Summary.CriticalViolations, result.Summary.HighViolations,
			result.Duration)
	}
}
