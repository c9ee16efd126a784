package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-builder/internal/analysis"
	"github.com/jonathan/portfolio-builder/internal/config"
	"github.com/jonathan/portfolio-builder/internal/ingestion"
	"github.com/jonathan/portfolio-builder/internal/observability"
	"github.com/jonathan/portfolio-builder/internal/types"
)

type analyzeOptions struct {
	profile string
	resume  string
	out     string
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a profile or resume against current hiring trends",
		Long: `Critiques a profile JSON (as written by build) or a raw resume and reports a score,
strengths, weaknesses, missing keywords and section-level suggestions.

Exactly one of --profile or --resume must be provided.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "", "Path to a profile JSON file")
	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "Path to resume (.pdf or plain text)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path for the analysis JSON (default: stdout)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd, root, func(cfg *config.Config) {
		if changed(cmd, "out") {
			cfg.Output = opts.out
		}
	})
	if err != nil {
		return err
	}

	if (opts.profile == "") == (opts.resume == "") {
		return fmt.Errorf("exactly one of --profile or --resume must be provided")
	}

	var data map[string]any
	var text string
	if opts.profile != "" {
		data, err = loadProfileData(opts.profile)
		if err != nil {
			return err
		}
	} else {
		text, _, err = ingestion.ReadFile(opts.resume)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
	}

	c, err := openCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	agent := analysis.NewAgent(c)
	var result *types.AnalysisResult
	if data != nil {
		result = agent.Analyze(ctx, data)
	} else {
		result = agent.AnalyzeResumeText(ctx, text)
	}

	if cfg.Verbose {
		observability.NewPrinter(printerOutput(cmd)).PrintAnalysis(result)
	}
	return writeJSON(cmd, cfg.Output, map[string]any{"analysis": result})
}

// loadProfileData reads a profile JSON file. Output from the build command is
// unwrapped to its enhanced profile.
func loadProfileData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	if enhanced, ok := data["enhanced_profile"].(map[string]any); ok {
		return enhanced, nil
	}
	return data, nil
}
