package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	genai "google.golang.org/genai"

	"github.com/ppiankov/krisis/internal/util"
)

const geminiDefaultModel = "gemini-2.5-flash"

// GeminiProvider implements Provider via the official genai client
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: util.NewHTTPClient(0, config.HTTPProxy, config.HTTPSProxy),
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks the API key with a minimal completion
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	s := p.config.settings(CompletionRequest{}, geminiDefaultModel)

	_, err := p.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: "Hi"}}}},
		&genai.GenerateContentConfig{MaxOutputTokens: 10},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gemini availability check failed: %v\n", err)
		return false
	}
	return true
}

// Complete sends the prompt pair as a single content block. The genai
// client has no system role on this path, so the system prompt is
// prepended to the user prompt.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s := p.config.settings(req, geminiDefaultModel)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	full := req.System + "\n\n" + req.User

	resp, err := p.client.Models.GenerateContent(callCtx, s.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(s.temperature),
			MaxOutputTokens: int32(s.maxTokens),
		},
	)
	if err != nil {
		return nil, transportError("gemini", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, transportError("gemini", fmt.Errorf("no candidates in response"))
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return nil, transportError("gemini", fmt.Errorf("no text parts in response"))
	}

	var tokensUsed int
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &CompletionResponse{
		Content:    strings.TrimSpace(text.String()),
		Model:      s.model,
		TokensUsed: tokensUsed,
	}, nil
}
