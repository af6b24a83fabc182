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

var (
	fixDryRun     bool
	fixConfidence float64
	fixMaxSafety  string
	fixJSON       bool
	fixConfigPath string
)

func fixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [path...]",
		Short: "Propose and apply automated fixes",
		Long: `Generate patch suggestions for detected violations and apply the ones
that pass the safety policy. Files are rewritten in place; a patch that
breaks the file's parse is rolled back automatically.

Examples:
  # Show what would change without touching files
  conscan fix --dry-run src/

  # Apply high-confidence safe patches
  conscan fix src/

  # Allow moderate-risk patches too
  conscan fix --max-safety moderate --confidence 0.6 src/`,
		RunE: runFix,
	}

	cmd.Flags().BoolVar(&fixDryRun, "dry-run", false,
		"Propose patches without writing files")
	cmd.Flags().Float64Var(&fixConfidence, "confidence", 0,
		"Minimum patch confidence to apply (0 = use config value)")
	cmd.Flags().StringVar(&fixMaxSafety, "max-safety", "",
		"Most risky tier to apply: safe, moderate, risky")
	cmd.Flags().BoolVar(&fixJSON, "json", false,
		"Output results as JSON")
	cmd.Flags().StringVarP(&fixConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	req := domain.FixRequest{
		Paths:               args,
		DryRun:              fixDryRun,
		ConfidenceThreshold: fixConfidence,
		ConfigPath:          fixConfigPath,
		Recursive:           true,
	}
	if fixMaxSafety != "" {
		switch s := domain.SafetyLevel(fixMaxSafety); s {
		case domain.SafetyLevelSafe, domain.SafetyLevelModerate, domain.SafetyLevelRisky:
			req.MaxSafety = s
		default:
			return fmt.Errorf("unknown safety level: %s", fixMaxSafety)
		}
	}

	useCase := app.NewFixUseCase()
	resp, err := useCase.Execute(context.Background(), req)
	if err != nil {
		return err
	}

	if fixJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printFixResponse(resp, fixDryRun)
	return nil
}

func printFixResponse(resp *domain.FixResponse, dryRun bool) {
	if len(resp.Suggestions) == 0 {
		fmt.Println("No fixable violations found.")
		return
	}

	fmt.Printf("%d patch suggestions:\n", len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		fmt.Printf("  %s:%d [%s, %.0f%%] %s\n",
			s.FilePath, s.StartLine, s.Safety, s.Confidence*100, s.Description)
	}

	if dryRun {
		fmt.Println("\nDry run: no files were modified.")
		return
	}

	fmt.Printf("\nApplied %d, skipped %d, rolled back %d\n",
		resp.TotalApplied, resp.TotalSkipped, resp.TotalRolledBack)
	for file, result := range resp.Results {
		for _, out := range result.Skipped {
			fmt.Printf("  skipped %s:%d: %s\n", file, out.Patch.StartLine, out.Reason)
		}
		for _, out := range result.RolledBack {
			fmt.Printf("  rolled back %s:%d: %s\n", file, out.Patch.StartLine, out.Reason)
		}
	}
}
