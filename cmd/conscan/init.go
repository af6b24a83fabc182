package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a conscan configuration file",
		Long: `Generate a conscan configuration file with sensible defaults.

By default, creates conscan.yaml in the current directory. Use
--interactive for a guided setup wizard.

Examples:
  # Create conscan.yaml in current directory
  conscan init

  # Custom output path
  conscan init --config custom.yaml

  # Overwrite existing file
  conscan init --force

  # Interactive setup wizard
  conscan init --interactive
  conscan init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", "conscan.yaml",
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg := config.DefaultConfig()

	if interactive {
		var err error
		cfg, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	// Check if file exists
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	// Check if parent directory exists
	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'conscan analyze .' to analyze your project.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (*config.Config, string, error) {
	fmt.Println()
	fmt.Println("conscan Configuration Setup")
	fmt.Println("===========================")
	fmt.Println()

	// Strictness selection
	strictnessLevels := []struct {
		Label       string
		Description string
		Apply       func(*config.Config)
	}{
		{"Standard (recommended)", "Balanced thresholds for most projects", applyStandard},
		{"Relaxed", "Higher thresholds, fewer warnings", applyRelaxed},
		{"Strict", "Lower thresholds, CI/CD enforcement", applyStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should the thresholds be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return nil, "", fmt.Errorf("strictness selection cancelled: %w", err)
	}

	fmt.Println()

	// Gitignore handling
	gitignorePrompt := promptui.Select{
		Label: "Skip files matched by .gitignore?",
		Items: []string{"Yes", "No"},
	}
	gitignoreIdx, _, err := gitignorePrompt.Run()
	if err != nil {
		return nil, "", fmt.Errorf("gitignore selection cancelled: %w", err)
	}

	fmt.Println()

	// Config path
	pathPrompt := promptui.Prompt{
		Label:   "Config file path",
		Default: defaultConfigPath,
	}
	configPath, err := pathPrompt.Run()
	if err != nil {
		return nil, "", fmt.Errorf("path input cancelled: %w", err)
	}

	cfg := config.DefaultConfig()
	strictnessLevels[strictnessIdx].Apply(cfg)
	cfg.Analysis.RespectGitignore = gitignoreIdx == 0

	return cfg, configPath, nil
}

func applyStandard(cfg *config.Config) {}

func applyRelaxed(cfg *config.Config) {
	cfg.Thresholds.MaxPositionalParams = 5
	cfg.Thresholds.MaxComplexity = 15
	cfg.Thresholds.GodClassMethods = 30
	cfg.Thresholds.GodClassLines = 800
	cfg.Thresholds.MaxFunctionLines = 100
	cfg.Thresholds.NameUsageThreshold = 12
	cfg.Output.MinSeverity = "medium"
}

func applyStrict(cfg *config.Config) {
	cfg.Thresholds.MaxPositionalParams = 2
	cfg.Thresholds.MaxComplexity = 7
	cfg.Thresholds.GodClassMethods = 12
	cfg.Thresholds.GodClassLines = 300
	cfg.Thresholds.MaxFunctionLines = 40
	cfg.Thresholds.NameUsageThreshold = 5
	cfg.Output.MinSeverity = "info"
}
