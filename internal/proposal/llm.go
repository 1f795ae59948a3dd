// Package proposal talks to the language model. It builds the request from the
// working tree snapshot, sends it together with the fixed commit-writing policy
// to a provider, and returns the raw response text for the plan package to
// interpret. Providers are behind the LLM interface so tests can use MockLLM.
package proposal

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrLLMFailed       = errors.New("LLM request failed")
	ErrInvalidConfig   = errors.New("invalid LLM configuration")
	ErrUnknownProvider = errors.New("unknown LLM provider")
)

// Provider identifies a model service.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Providers lists the supported providers, default first.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI}
}

// ParseProvider normalizes a provider name. Empty means the default provider.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	}
	return "", errors.Wrapf(ErrUnknownProvider, "%q (supported: gemini, openai)", name)
}

// DefaultModel returns the model used when none is configured.
func (p Provider) DefaultModel() string {
	if p == ProviderOpenAI {
		return "gpt-4o"
	}
	return "gemini-2.0-flash-001"
}

// DisplayName returns the provider's name as shown to users.
func (p Provider) DisplayName() string {
	if p == ProviderOpenAI {
		return "OpenAI"
	}
	return "Gemini"
}

// APIKeyEnv returns the environment variable holding the provider's key.
func (p Provider) APIKeyEnv() string {
	if p == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// Completion is the text returned by a provider plus any usage it reported.
type Completion struct {
	Text         string
	ResponseID   string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// LLM defines the interface for interacting with language models.
type LLM interface {
	// Generate sends the system policy and the user prompt in one request and
	// returns the full response. No retries and no streaming.
	Generate(ctx context.Context, system, prompt string) (*Completion, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	Provider Provider

	// Model specifies the model identifier (e.g., "gemini-2.0-flash-001", "gpt-4o")
	Model string

	// Temperature controls randomness; commit planning runs at 0
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultLLMConfig returns the configuration for the given provider.
func DefaultLLMConfig(provider Provider) LLMConfig {
	return LLMConfig{
		Provider:    provider,
		Model:       provider.DefaultModel(),
		Temperature: 0,
	}
}

func (c LLMConfig) validate() error {
	if c.APIKey == "" {
		return errors.Wrapf(ErrInvalidConfig, "missing API key (set %s or use --api-key)", c.Provider.APIKeyEnv())
	}
	if c.Model == "" {
		return errors.Wrap(ErrInvalidConfig, "missing model name")
	}
	return nil
}

// NewLLM creates the provider implementation named by config.Provider.
func NewLLM(ctx context.Context, config LLMConfig) (LLM, error) {
	switch config.Provider {
	case ProviderGemini, "":
		config.Provider = ProviderGemini
		return NewGeminiLLM(ctx, config)
	case ProviderOpenAI:
		return NewOpenAILLM(config)
	}
	return nil, errors.Wrapf(ErrUnknownProvider, "%q", config.Provider)
}
