// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Resume     string `json:"resume,omitempty"`      // Path to resume (.pdf or text)
	GitHubUser string `json:"github_user,omitempty"` // GitHub username
	Output     string `json:"output,omitempty"`      // Output path for the built profile JSON

	// LLM
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`
	GeminiModel     string `json:"gemini_model,omitempty"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`
	AnthropicModel  string `json:"anthropic_model,omitempty"`

	// Collaborators
	GitHubToken string `json:"github_token,omitempty"` // Raises the GitHub API quota
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Port        int    `json:"port,omitempty"`         // HTTP port for serve

	// Behavior
	MaxSectionEntries int  `json:"max_section_entries,omitempty"` // Per-section cap for resume extraction
	SkipEnhancement   bool `json:"skip_enhancement,omitempty"`
	Verbose           bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required inputs are checked by each command after merging with flags.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxSectionEntries < 0 {
		return fmt.Errorf("config error: 'max_section_entries' must be non-negative")
	}
	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.Resume, defaults.Resume)
	fill(&result.GitHubUser, defaults.GitHubUser)
	fill(&result.Output, defaults.Output)
	fill(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	fill(&result.GeminiModel, defaults.GeminiModel)
	fill(&result.AnthropicAPIKey, defaults.AnthropicAPIKey)
	fill(&result.AnthropicModel, defaults.AnthropicModel)
	fill(&result.GitHubToken, defaults.GitHubToken)
	fill(&result.DatabaseURL, defaults.DatabaseURL)

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxSectionEntries == 0 {
		result.MaxSectionEntries = defaults.MaxSectionEntries
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
