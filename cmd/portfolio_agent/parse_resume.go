package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-builder/internal/config"
	"github.com/jonathan/portfolio-builder/internal/ingestion"
	"github.com/jonathan/portfolio-builder/internal/observability"
	"github.com/jonathan/portfolio-builder/internal/resume"
	"github.com/jonathan/portfolio-builder/internal/types"
)

type parseResumeOptions struct {
	in                string
	out               string
	maxSectionEntries int
}

// parseResult is the JSON document written by the parse-resume command.
type parseResult struct {
	Data     *types.ResumeProfile `json:"data"`
	Source   *ingestion.Metadata  `json:"source"`
	Degraded []string             `json:"degraded"`
}

func newParseResumeCmd(root *rootOptions) *cobra.Command {
	opts := &parseResumeOptions{}

	cmd := &cobra.Command{
		Use:   "parse-resume",
		Short: "Extract a structured profile from a resume",
		Long:  `Reads a resume (.pdf or plain text) and extracts contact details, skills and sections into the canonical profile JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParseResume(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "Path to resume (.pdf or plain text)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path for the profile JSON (default: stdout)")
	cmd.Flags().IntVar(&opts.maxSectionEntries, "max-section-entries", 0, "Maximum entries kept per resume section")
	return cmd
}

func runParseResume(cmd *cobra.Command, root *rootOptions, opts *parseResumeOptions) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd, root, func(cfg *config.Config) {
		if changed(cmd, "in") {
			cfg.Resume = opts.in
		}
		if changed(cmd, "out") {
			cfg.Output = opts.out
		}
		if changed(cmd, "max-section-entries") {
			cfg.MaxSectionEntries = opts.maxSectionEntries
		}
	})
	if err != nil {
		return err
	}
	if cfg.Resume == "" {
		return fmt.Errorf("--in must be provided (via flag or config)")
	}

	text, meta, err := ingestion.ReadFile(cfg.Resume)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	c, err := openCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	result, err := resume.NewAgent(c).WithMaxSectionEntries(cfg.MaxSectionEntries).Extract(ctx, text)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(printerOutput(cmd)).PrintResumeProfile(result.Profile)
	}

	degraded := result.Degraded
	if degraded == nil {
		degraded = []string{}
	}
	return writeJSON(cmd, cfg.Output, parseResult{Data: result.Profile, Source: meta, Degraded: degraded})
}
