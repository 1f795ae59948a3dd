package proposal

import (
	"context"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"
)

// GeminiLLM implements the LLM interface using the Gemini API.
type GeminiLLM struct {
	client *genai.Client
	config LLMConfig
}

// NewGeminiLLM creates a Gemini-backed LLM implementation.
func NewGeminiLLM(ctx context.Context, config LLMConfig) (*GeminiLLM, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "create Gemini client: %v", err)
	}

	return &GeminiLLM{
		client: client,
		config: config,
	}, nil
}

// Generate sends the prompt with the system instruction and returns the text.
func (g *GeminiLLM) Generate(ctx context.Context, system, prompt string) (*Completion, error) {
	if prompt == "" {
		return nil, errors.Wrap(ErrInvalidConfig, "prompt cannot be empty")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.config.Temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if g.config.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.config.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, errors.Wrapf(ErrLLMFailed, "gemini: %v", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.Wrap(ErrLLMFailed, "gemini: no response generated")
	}

	completion := &Completion{
		Text:       resp.Text(),
		ResponseID: resp.ResponseID,
	}
	if usage := resp.UsageMetadata; usage != nil {
		completion.InputTokens = int(usage.PromptTokenCount)
		completion.OutputTokens = int(usage.CandidatesTokenCount)
		completion.TotalTokens = int(usage.TotalTokenCount)
	}
	return completion, nil
}
