package proposal

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	ErrGenerationFailed = errors.New("proposal generation failed")
)

// Generator asks an LLM for a commit plan using the fixed SystemPrompt.
type Generator struct {
	llm    LLM
	config LLMConfig
	logger *zap.Logger
}

// NewGenerator creates a generator with the given LLM implementation.
func NewGenerator(llm LLM, config LLMConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		llm:    llm,
		config: config,
		logger: logger,
	}
}

// Generate sends an already-assembled prompt and returns the model's answer.
// The call blocks until the provider responds; failures are not retried.
func (g *Generator) Generate(ctx context.Context, prompt string) (*Proposal, error) {
	if g.llm == nil {
		return nil, errors.Wrap(ErrGenerationFailed, "LLM is required")
	}
	if prompt == "" {
		return nil, errors.Wrap(ErrGenerationFailed, "prompt is required")
	}

	g.logger.Debug("Requesting commit plan",
		zap.String("provider", string(g.config.Provider)),
		zap.String("model", g.config.Model),
		zap.Int("prompt_bytes", len(prompt)))

	start := time.Now()
	completion, err := g.llm.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, errors.Wrap(errors.Mark(err, ErrGenerationFailed), "LLM invocation failed")
	}
	latency := time.Since(start)

	g.logger.Debug("Received commit plan",
		zap.Duration("latency", latency),
		zap.Int("response_bytes", len(completion.Text)),
		zap.Int("total_tokens", completion.TotalTokens))

	return &Proposal{
		Text:        completion.Text,
		GeneratedAt: time.Now(),
		Generation: GenerationMetadata{
			Provider:     string(g.config.Provider),
			Model:        g.config.Model,
			ResponseID:   completion.ResponseID,
			Temperature:  g.config.Temperature,
			MaxTokens:    g.config.MaxTokens,
			InputTokens:  completion.InputTokens,
			OutputTokens: completion.OutputTokens,
			TotalTokens:  completion.TotalTokens,
			LatencyMS:    int(latency.Milliseconds()),
		},
	}, nil
}
