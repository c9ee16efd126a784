package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-builder/internal/config"
	"github.com/jonathan/portfolio-builder/internal/ingestion"
	"github.com/jonathan/portfolio-builder/internal/observability"
	"github.com/jonathan/portfolio-builder/internal/pipeline"
	"github.com/jonathan/portfolio-builder/internal/resume"
	"github.com/jonathan/portfolio-builder/internal/types"
)

type buildOptions struct {
	resume            string
	githubUser        string
	githubToken       string
	out               string
	maxSectionEntries int
	skipEnhancement   bool
}

// buildResult is the JSON document written by the build command.
type buildResult struct {
	RawProfile      *types.MergedProfile     `json:"raw_profile"`
	EnhancedProfile *types.MergedProfile     `json:"enhanced_profile"`
	Enhancement     *types.EnhancementResult `json:"enhancement,omitempty"`
	Degraded        []string                 `json:"degraded"`
	DurationMS      int64                    `json:"duration_ms"`
}

func newBuildCmd(root *rootOptions) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a merged profile from a resume and/or a GitHub account",
		Long: `Extracts a profile from the resume, summarizes the GitHub account, merges both, and
rewrites experience and project descriptions for impact (unless --skip-enhance).

At least one of --resume or --github must be provided (via flag or config).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "Path to resume (.pdf or plain text)")
	cmd.Flags().StringVarP(&opts.githubUser, "github", "g", "", "GitHub username")
	cmd.Flags().StringVar(&opts.githubToken, "github-token", "", "GitHub API token (optional, defaults to GITHUB_TOKEN env var)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path for the profile JSON (default: stdout)")
	cmd.Flags().IntVar(&opts.maxSectionEntries, "max-section-entries", 0, "Maximum entries kept per resume section")
	cmd.Flags().BoolVar(&opts.skipEnhancement, "skip-enhance", false, "Skip the content enhancement step")
	return cmd
}

func runBuild(cmd *cobra.Command, root *rootOptions, opts *buildOptions) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd, root, func(cfg *config.Config) {
		if changed(cmd, "resume") {
			cfg.Resume = opts.resume
		}
		if changed(cmd, "github") {
			cfg.GitHubUser = opts.githubUser
		}
		if changed(cmd, "github-token") {
			cfg.GitHubToken = opts.githubToken
		}
		if changed(cmd, "out") {
			cfg.Output = opts.out
		}
		if changed(cmd, "max-section-entries") {
			cfg.MaxSectionEntries = opts.maxSectionEntries
		}
		if changed(cmd, "skip-enhance") {
			cfg.SkipEnhancement = opts.skipEnhancement
		}
	})
	if err != nil {
		return err
	}

	in := pipeline.Input{
		GitHubUsername:  strings.TrimSpace(cfg.GitHubUser),
		SkipEnhancement: cfg.SkipEnhancement,
		OnProgress: func(e pipeline.ProgressEvent) {
			slog.Debug(e.Message, slog.String("step", e.Step))
		},
	}
	if cfg.Resume != "" {
		text, meta, err := ingestion.ReadFile(cfg.Resume)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		slog.Debug("resume loaded", slog.String("file", meta.Filename), slog.Int("chars", len(text)))
		in.ResumeText = text
	}
	if !in.HasInput() {
		return fmt.Errorf("either --resume or --github must be provided (via flag or config)")
	}

	c, err := openCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	builder := pipeline.NewBuilder(c, newGitHubSource(cfg.GitHubToken))
	builder.Resume = resume.NewAgent(c).WithMaxSectionEntries(cfg.MaxSectionEntries)

	out, err := builder.Build(ctx, in)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		p := observability.NewPrinter(printerOutput(cmd))
		p.PrintResumeProfile(out.Resume)
		p.PrintGitHubProfile(out.GitHub)
		p.PrintMergedProfile(out.Enhanced)
		p.PrintDegraded(out.Degraded)
	}

	return writeJSON(cmd, cfg.Output, buildResult{
		RawProfile:      out.Raw,
		EnhancedProfile: out.Enhanced,
		Enhancement:     out.Enhancement,
		Degraded:        out.Degraded,
		DurationMS:      out.Duration.Milliseconds(),
	})
}
