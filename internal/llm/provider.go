package llm

import (
	"context"
	"fmt"
	"time"
)

// Defaults applied when neither the request nor the configuration sets the
// corresponding field.
const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 8000
	defaultTimeout     = 120 * time.Second
)

// Provider is a completion backend. Each implementation wraps one vendor
// API behind the same request/response pair so callers never branch on the
// vendor.
type Provider interface {
	// Name returns the provider name as used in configuration
	Name() string

	// Complete sends a system/user prompt pair and returns the raw completion
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable reports whether the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is the input for one model call
type CompletionRequest struct {
	// System is the system prompt shared by every framework
	System string

	// User is the rendered framework prompt
	User string

	// Model overrides the configured model for this call
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// CompletionResponse is the model's raw output before any extraction
type CompletionResponse struct {
	// Content is the raw response text, unparsed
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration shared by all backends
type Config struct {
	// Provider name: "openrouter", "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (OpenRouter, Ollama, proxies)
	BaseURL string

	// Temperature for generation
	Temperature float32

	// MaxTokens for response generation
	MaxTokens int

	// Timeout for API requests
	Timeout time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// callSettings is a Config resolved against one request and the package
// defaults.
type callSettings struct {
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// settings resolves the effective model, token limit, temperature, and
// timeout for one call. Request fields win over Config fields; anything
// still unset falls back to the package defaults and the given model.
func (c Config) settings(req CompletionRequest, fallbackModel string) callSettings {
	s := callSettings{
		model:       req.Model,
		maxTokens:   req.MaxTokens,
		temperature: c.Temperature,
		timeout:     c.Timeout,
	}
	if s.model == "" {
		s.model = c.Model
	}
	if s.model == "" {
		s.model = fallbackModel
	}
	if s.maxTokens <= 0 {
		s.maxTokens = c.MaxTokens
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultMaxTokens
	}
	if s.temperature <= 0 {
		s.temperature = defaultTemperature
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	return s
}

// TransportError is the single failure kind for a provider round trip.
// Network errors, non-2xx statuses, and responses missing the expected text
// field all surface through it, so the retry loop consumes one error type.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: API request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func transportError(provider string, err error) *TransportError {
	return &TransportError{Provider: provider, Err: err}
}
