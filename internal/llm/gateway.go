package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Completer is the single-method view of the gateway that agents depend on.
type Completer interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// Gateway sends prompts to the configured provider and retries throttled
// requests with linearly increasing backoff. Other failures are returned
// immediately. A Gateway holds no per-request state and is safe for
// concurrent use.
type Gateway struct {
	provider   Provider
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithMaxRetries sets how many times a rate-limited request is retried.
func WithMaxRetries(n int) Option {
	return func(g *Gateway) { g.maxRetries = n }
}

// WithBaseDelay sets the backoff unit; attempt n waits n*d.
func WithBaseDelay(d time.Duration) Option {
	return func(g *Gateway) { g.baseDelay = d }
}

// WithSleeper replaces the backoff wait. Tests use it to avoid real delays.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gateway) { g.sleep = fn }
}

// NewGateway selects a provider from cfg by presence of credentials and
// wraps it in a Gateway.
func NewGateway(ctx context.Context, cfg *Config) (*Gateway, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	selected, err := cfg.Select()
	if err != nil {
		return nil, err
	}
	provider, err := NewProvider(ctx, selected)
	if err != nil {
		return nil, err
	}
	slog.Info("LLM gateway ready", slog.String("provider", provider.Name()), slog.String("model", selected.Model))
	return NewGatewayWithProvider(provider, WithMaxRetries(cfg.MaxRetries), WithBaseDelay(cfg.BaseDelay)), nil
}

// NewGatewayWithProvider wraps an existing provider.
func NewGatewayWithProvider(p Provider, opts ...Option) *Gateway {
	g := &Gateway{
		provider:   p,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ProviderName returns the name of the active provider.
func (g *Gateway) ProviderName() string {
	return g.provider.Name()
}

// Send returns the model's raw completion for prompt.
func (g *Gateway) Send(ctx context.Context, prompt string) (string, error) {
	for attempt := 1; ; attempt++ {
		text, err := g.provider.Complete(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", ErrEmptyCompletion
			}
			return text, nil
		}

		var rl *RateLimitedError
		if !errors.As(err, &rl) {
			return "", err
		}
		if attempt > g.maxRetries {
			return "", &RateLimitedError{Provider: g.provider.Name(), Attempts: attempt, Cause: rl.Cause}
		}

		wait := g.baseDelay * time.Duration(attempt)
		slog.Info("LLM rate limited, backing off",
			slog.String("provider", g.provider.Name()),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait))
		if err := g.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
}

// Close releases the provider.
func (g *Gateway) Close() error {
	return g.provider.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
