package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"locobot/internal/logging"

	"google.golang.org/genai"
)

// CallOptions carries per-call hints passed opaquely to the provider.
type CallOptions struct {
	// ThinkingBudget is the generation effort hint in tokens. Zero means
	// provider default (no thinking config sent).
	ThinkingBudget int32
}

// Provider is the minimal model-provider interface the gateway dispatches
// against.
type Provider interface {
	Generate(ctx context.Context, model, prompt string, opts CallOptions) (string, error)
}

// GenAIProvider implements Provider using the Google GenAI SDK.
type GenAIProvider struct {
	client *genai.Client
}

// NewGenAIProvider creates a provider for the Gemini API.
func NewGenAIProvider(ctx context.Context, apiKey string) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIProvider{client: client}, nil
}

// Generate sends a single-turn generateContent call and returns the
// concatenated response text.
func (p *GenAIProvider) Generate(ctx context.Context, model, prompt string, opts CallOptions) (string, error) {
	startTime := time.Now()
	logging.APIDebug("[GenAI] Generate: model=%s prompt_len=%d thinking_budget=%d", model, len(prompt), opts.ThinkingBudget)

	var cfg *genai.GenerateContentConfig
	if opts.ThinkingBudget > 0 {
		cfg = &genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr(opts.ThinkingBudget),
			},
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		logging.APIError("[GenAI] Generate: model=%s failed after %v: %v", model, time.Since(startTime), err)
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		logging.APIWarn("[GenAI] Generate: model=%s returned empty response", model)
		return "", fmt.Errorf("no completion returned")
	}

	logging.API("[GenAI] Generate: model=%s completed in %v response_len=%d", model, time.Since(startTime), len(text))
	return text, nil
}
