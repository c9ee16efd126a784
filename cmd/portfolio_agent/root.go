package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-builder/internal/config"
	"github.com/jonathan/portfolio-builder/internal/github"
	"github.com/jonathan/portfolio-builder/internal/llm"
)

// completer is the gateway surface the commands need.
type completer interface {
	llm.Completer
	ProviderName() string
	Close() error
}

// Collaborator constructors, replaced in tests.
var (
	newCompleter = func(ctx context.Context, cfg *llm.Config) (completer, error) {
		g, err := llm.NewGateway(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	newGitHubSource = func(token string) github.Source {
		return github.NewRESTSource(token, nil)
	}
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "portfolio_agent",
		Short: "Portfolio Builder CLI and HTTP API Server",
		Long: `Portfolio Builder extracts a structured profile from a resume and a GitHub account,
merges the two, rewrites the content for impact, and scores it against current hiring trends.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")

	cmd.AddCommand(
		newServeCmd(opts),
		newBuildCmd(opts),
		newParseResumeCmd(opts),
		newAnalyzeCmd(opts),
		newTokenCmd(),
	)
	return cmd
}

// loadSettings loads the config file when given and applies flags the user
// explicitly set on top of it.
func loadSettings(cmd *cobra.Command, opts *rootOptions, overrides func(cfg *config.Config)) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		slog.Debug("loaded config", slog.String("path", opts.configPath))
	}

	if overrides != nil {
		overrides(&cfg)
	}
	if changed(cmd, "verbose") {
		cfg.Verbose = opts.verbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        8080,
	})
	return cfg, nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// llmConfig starts from the environment and applies API keys and models
// from the config file.
func llmConfig(cfg config.Config) (*llm.Config, error) {
	out, err := llm.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.GeminiAPIKey != "" {
		out.Primary.APIKey = cfg.GeminiAPIKey
	}
	if cfg.AnthropicAPIKey != "" {
		out.Fallback.APIKey = cfg.AnthropicAPIKey
	}
	if cfg.GeminiModel != "" {
		out = out.WithModel(llm.ProviderGemini, cfg.GeminiModel)
	}
	if cfg.AnthropicModel != "" {
		out = out.WithModel(llm.ProviderAnthropic, cfg.AnthropicModel)
	}
	return out, nil
}

func openCompleter(ctx context.Context, cfg config.Config) (completer, error) {
	lc, err := llmConfig(cfg)
	if err != nil {
		return nil, err
	}
	c, err := newCompleter(ctx, lc)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM gateway: %w", err)
	}
	slog.Debug("LLM gateway ready", slog.String("provider", c.ProviderName()))
	return c, nil
}

// writeJSON writes v as indented JSON to path, or to the command's output
// when path is empty.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("wrote output", slog.String("path", path))
	return nil
}

// printerOutput is where verbose summaries go; stdout may be carrying JSON.
func printerOutput(cmd *cobra.Command) io.Writer {
	return cmd.ErrOrStderr()
}
