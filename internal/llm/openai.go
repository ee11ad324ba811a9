package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/krisis/internal/util"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	openRouterDefaultModel = "openai/gpt-4o-mini"
)

// OpenAIProvider implements Provider for OpenAI-dialect APIs. OpenRouter
// speaks the same chat-completions protocol, so both providers share this
// implementation and differ only in base URL and default model.
type OpenAIProvider struct {
	client       *openai.Client
	name         string
	defaultModel string
	config       Config
}

// NewOpenAIProvider creates a provider for the OpenAI API
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return newChatCompletionsProvider("openai", openai.GPT4oMini, config), nil
}

// NewOpenRouterProvider creates a provider for the OpenRouter API
func NewOpenRouterProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}

	if config.BaseURL == "" {
		config.BaseURL = openRouterBaseURL
	}

	return newChatCompletionsProvider("openrouter", openRouterDefaultModel, config), nil
}

func newChatCompletionsProvider(name, defaultModel string, config Config) *OpenAIProvider {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = util.NewHTTPClient(timeout, config.HTTPProxy, config.HTTPSProxy)

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(clientConfig),
		name:         name,
		defaultModel: defaultModel,
		config:       config,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks the API key with a models listing
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s availability check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Complete sends the prompt pair through the chat completions endpoint
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s := p.config.settings(req, p.defaultModel)

	chatReq := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, transportError(p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, transportError(p.name, fmt.Errorf("no choices in response"))
	}

	return &CompletionResponse{
		Content:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
