package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/krisis/internal/model"
)

// NewProvider builds the configured provider. An empty provider name
// returns nil with no error, which disables inference.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "":
		return nil, nil
	case "openrouter":
		return NewOpenRouterProvider(config)
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "gemini", "google":
		return NewGeminiProvider(ctx, config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openrouter, openai, anthropic, ollama, gemini)", config.Provider)
	}
}

// ConfigFrom converts the process configuration into provider configuration
func ConfigFrom(cfg *model.Config) Config {
	return Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
	}
}
