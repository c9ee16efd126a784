package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-builder/internal/config"
	"github.com/jonathan/portfolio-builder/internal/server"
)

type serveOptions struct {
	port              int
	databaseURL       string
	maxSectionEntries int
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes REST endpoints for building, storing and publishing portfolios.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 8080, "Port to listen on")
	cmd.Flags().StringVar(&opts.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().IntVar(&opts.maxSectionEntries, "max-section-entries", 0, "Maximum entries kept per resume section")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	cfg, err := loadSettings(cmd, root, func(cfg *config.Config) {
		if changed(cmd, "port") {
			cfg.Port = opts.port
		}
		if changed(cmd, "db-url") {
			cfg.DatabaseURL = opts.databaseURL
		}
		if changed(cmd, "max-section-entries") {
			cfg.MaxSectionEntries = opts.maxSectionEntries
		}
	})
	if err != nil {
		return err
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	lc, err := llmConfig(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), server.Config{
		Port:              cfg.Port,
		DatabaseURL:       cfg.DatabaseURL,
		LLM:               lc,
		GitHubToken:       cfg.GitHubToken,
		MaxSectionEntries: cfg.MaxSectionEntries,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
