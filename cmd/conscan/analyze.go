package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ludo-technologies/conscan/app"
	"github.com/ludo-technologies/conscan/domain"
	"github.com/spf13/cobra"
)

var (
	analyzeFormat      string
	analyzeJSON        bool
	analyzeOutputPath  string
	analyzeConfigPath  string
	analyzeMinSeverity string
	analyzeCategories  []string
	analyzeSortBy      string
	analyzeDetails     bool
	analyzeNoRecursive bool
	analyzeExclude     []string
	analyzeBaseline    bool
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze source files for connascence violations",
		Long: `Analyze source files for connascence violations across the nine coupling
categories, plus size and god-object findings.

Examples:
  conscan analyze src/
  conscan analyze --min-severity high src/
  conscan analyze --categories position,algorithm src/
  conscan analyze --json src/
  conscan analyze --details --sort location app.py`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "",
		"Output format: text, json, yaml, csv")
	cmd.Flags().BoolVar(&analyzeJSON, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().StringVarP(&analyzeOutputPath, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&analyzeMinSeverity, "min-severity", "",
		"Lowest severity to report: critical, high, medium, low, info")
	cmd.Flags().StringSliceVar(&analyzeCategories, "categories", nil,
		"Connascence categories to report (comma-separated, default: all)")
	cmd.Flags().StringVar(&analyzeSortBy, "sort", "",
		"Sort violations by: severity, location, category")
	cmd.Flags().BoolVar(&analyzeDetails, "details", false,
		"Include code snippets and remediation hints")
	cmd.Flags().BoolVar(&analyzeNoRecursive, "no-recursive", false,
		"Don't descend into subdirectories")
	cmd.Flags().StringSliceVar(&analyzeExclude, "exclude", nil,
		"Additional exclude patterns")
	cmd.Flags().BoolVar(&analyzeBaseline, "save-baseline", false,
		"Pin this run's metrics snapshot as the baseline for later diffs")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	req, err := buildAnalyzeRequest(args)
	if err != nil {
		return err
	}

	writer := os.Stdout
	if analyzeOutputPath != "" {
		f, err := os.Create(analyzeOutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}
	req.OutputWriter = writer

	useCase := app.NewAnalyzeUseCase()
	_, err = useCase.Execute(context.Background(), req)
	return err
}

// buildAnalyzeRequest translates CLI flags into a request; config-file
// values fill whatever the flags leave empty.
func buildAnalyzeRequest(paths []string) (domain.AnalyzeRequest, error) {
	req := domain.AnalyzeRequest{
		Paths:           paths,
		ConfigPath:      analyzeConfigPath,
		ShowDetails:     analyzeDetails,
		Recursive:       !analyzeNoRecursive,
		ExcludePatterns: analyzeExclude,
		SaveBaseline:    analyzeBaseline,
	}

	format := analyzeFormat
	if analyzeJSON {
		format = "json"
	}
	if format != "" {
		switch f := domain.OutputFormat(format); f {
		case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatCSV:
			req.OutputFormat = f
		default:
			return req, fmt.Errorf("unsupported format: %s", format)
		}
	}

	if analyzeMinSeverity != "" {
		sev := domain.Severity(strings.ToLower(analyzeMinSeverity))
		if sev.Level() == 0 {
			return req, fmt.Errorf("unknown severity: %s", analyzeMinSeverity)
		}
		req.MinSeverity = sev
	}

	if analyzeSortBy != "" {
		switch s := domain.SortCriteria(analyzeSortBy); s {
		case domain.SortBySeverity, domain.SortByLocation, domain.SortByCategory:
			req.SortBy = s
		default:
			return req, fmt.Errorf("unknown sort criteria: %s", analyzeSortBy)
		}
	}

	if len(analyzeCategories) > 0 {
		valid := make(map[domain.Category]bool, len(domain.AllCategories))
		for _, c := range domain.AllCategories {
			valid[c] = true
		}
		for _, raw := range analyzeCategories {
			c := domain.Category(strings.ToLower(strings.TrimSpace(raw)))
			if !valid[c] {
				return req, fmt.Errorf("unknown category: %s", raw)
			}
			req.Categories = append(req.Categories, c)
		}
	}

	return req, nil
}
