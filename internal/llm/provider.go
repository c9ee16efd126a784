package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Provider is the reduced contract every model provider is adapted to:
// one prompt in, one completion out, or a typed failure
// (*RateLimitedError, *ProviderError).
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Complete sends a single prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the provider.
	Close() error
}

// NewProvider creates the provider described by cfg.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch cfg.Kind {
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Kind)
	}
}

// GeminiProvider implements Provider for Google Gemini.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return string(ProviderGemini)
}

// Complete generates text for the prompt.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(p.temperature)
	if p.maxTokens > 0 {
		model.SetMaxOutputTokens(p.maxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	return extractTextFromResponse(resp), nil
}

// Close releases resources held by the client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// extractTextFromResponse concatenates the text parts of the first candidate.
// A response without candidates (e.g. a safety block) yields an empty string.
func extractTextFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, "")
}

// classifyGeminiError maps REST and gRPC failures onto the gateway taxonomy.
func classifyGeminiError(err error) error {
	name := string(ProviderGemini)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests {
			return &RateLimitedError{Provider: name, Cause: err}
		}
		body := gerr.Body
		if body == "" {
			body = gerr.Message
		}
		return &ProviderError{Provider: name, StatusCode: gerr.Code, Body: body, Cause: err}
	}

	if st, ok := status.FromError(err); ok {
		if st.Code() == codes.ResourceExhausted {
			return &RateLimitedError{Provider: name, Cause: err}
		}
		return &ProviderError{Provider: name, StatusCode: httpStatusFromCode(st.Code()), Body: st.Message(), Cause: err}
	}

	return &ProviderError{Provider: name, Cause: err}
}

func httpStatusFromCode(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
