// Package llm provides the LLM gateway, provider adapters, and helpers for
// recovering structured JSON from model output.
package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ProviderKind identifies an LLM provider.
type ProviderKind string

// Supported providers.
const (
	// ProviderGemini is the Google Gemini provider (primary).
	ProviderGemini ProviderKind = "gemini"
	// ProviderAnthropic is the Anthropic Claude provider (fallback).
	ProviderAnthropic ProviderKind = "anthropic"
)

// Default models and retry policy.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultMaxRetries     = 3
	DefaultBaseDelay      = 3 * time.Second
	DefaultMaxTokens      = 8192
)

// ProviderConfig configures a single provider.
type ProviderConfig struct {
	Kind        ProviderKind
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Configured reports whether the provider has credentials.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// Config holds the gateway configuration: a primary provider, an optional
// fallback provider, and the rate-limit retry policy.
type Config struct {
	Primary    ProviderConfig
	Fallback   ProviderConfig
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultConfig returns Gemini as primary and Claude as fallback, without credentials.
func DefaultConfig() *Config {
	return &Config{
		Primary: ProviderConfig{
			Kind:        ProviderGemini,
			Model:       DefaultGeminiModel,
			Temperature: 0.2,
			MaxTokens:   DefaultMaxTokens,
		},
		Fallback: ProviderConfig{
			Kind:        ProviderAnthropic,
			Model:       DefaultAnthropicModel,
			Temperature: 0.2,
			MaxTokens:   DefaultMaxTokens,
		},
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

// ConfigFromEnv builds the configuration from environment variables.
// It reads GEMINI_API_KEY, GEMINI_MODEL, ANTHROPIC_API_KEY, ANTHROPIC_MODEL,
// LLM_MAX_RETRIES (default: 3) and LLM_RETRY_BASE_DELAY (default: 3s).
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Primary.APIKey = os.Getenv("GEMINI_API_KEY")
	if m := os.Getenv("GEMINI_MODEL"); m != "" {
		cfg.Primary.Model = m
	}
	cfg.Fallback.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	if m := os.Getenv("ANTHROPIC_MODEL"); m != "" {
		cfg.Fallback.Model = m
	}

	if v := os.Getenv("LLM_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %v", err)
		}
		cfg.MaxRetries = n
	}
	if v := os.Getenv("LLM_RETRY_BASE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_RETRY_BASE_DELAY: %v", err)
		}
		cfg.BaseDelay = d
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *Config) normalize() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must be non-negative, got: %d", c.MaxRetries)
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("LLM_RETRY_BASE_DELAY must be non-negative, got: %s", c.BaseDelay)
	}
	return nil
}

// Select returns the provider to use: the primary when it has credentials,
// otherwise the fallback.
func (c *Config) Select() (ProviderConfig, error) {
	if c.Primary.Configured() {
		return c.Primary, nil
	}
	if c.Fallback.Configured() {
		return c.Fallback, nil
	}
	return ProviderConfig{}, ErrNoProvider
}

// WithModel returns a new Config with the model overridden for the given provider.
func (c *Config) WithModel(kind ProviderKind, model string) *Config {
	newConfig := *c
	if newConfig.Primary.Kind == kind {
		newConfig.Primary.Model = model
	}
	if newConfig.Fallback.Kind == kind {
		newConfig.Fallback.Model = model
	}
	return &newConfig
}
