package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyCompletion is returned when a provider answers successfully with no text.
var ErrEmptyCompletion = errors.New("LLM returned an empty completion")

// ErrNoProvider is returned when no provider has credentials configured.
var ErrNoProvider = errors.New("no LLM provider credentials configured")

// RateLimitedError indicates the provider throttled the request.
// The gateway retries these; Attempts is set once retries are exhausted.
type RateLimitedError struct {
	Provider string
	Attempts int
	Cause    error
}

func (e *RateLimitedError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s rate limited after %d attempts: %v", e.Provider, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("%s rate limited: %v", e.Provider, e.Cause)
}

func (e *RateLimitedError) Unwrap() error {
	return e.Cause
}

// ProviderError is any non-success provider response other than throttling.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, Truncate(e.Body, 500))
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsAuth reports whether the provider rejected the credentials.
func (e *ProviderError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
