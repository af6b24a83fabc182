package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ludo-technologies/conscan/app"
	"github.com/ludo-technologies/conscan/domain"
	"github.com/spf13/cobra"
)

var (
	watchConfigPath string
	watchQuiet      bool
	watchLogLevel   string
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Watch paths and re-analyze changed files",
		Long: `Watch the given paths for changes and incrementally re-analyze modified
files. Unchanged files are served from the result cache. Press Ctrl-C to
stop.

Examples:
  conscan watch src/
  conscan watch --quiet src/ lib/`,
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false,
		"Only print batch summaries, not per-file results")
	cmd.Flags().StringVar(&watchLogLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(watchLogLevel),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onFile := func(path string, result *domain.AnalysisResult) {
		if watchQuiet {
			return
		}
		if result.TotalViolations == 0 {
			fmt.Printf("%s: clean\n", path)
			return
		}
		fmt.Printf("%s: %d violations\n", path, result.TotalViolations)
		for _, v := range result.Violations {
			fmt.Printf("  %s\n", v.String())
		}
	}
	onBatch := func(batch domain.BatchSummary) {
		fmt.Printf("batch: %d changed, %d cached, %d failed (%s)\n",
			len(batch.ChangedFiles), len(batch.UnchangedFiles),
			len(batch.FailedFiles), batch.Duration.Round(time.Millisecond))
	}

	req := domain.AnalyzeRequest{
		Paths:      args,
		ConfigPath: watchConfigPath,
		Recursive:  true,
	}

	fmt.Printf("Watching %v (Ctrl-C to stop)\n", args)
	useCase := app.NewWatchUseCase(logger)
	return useCase.Execute(ctx, req, onFile, onBatch)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
