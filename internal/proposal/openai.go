package proposal

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAILLM implements the LLM interface using OpenAI's API.
type OpenAILLM struct {
	client openai.Client
	config LLMConfig
}

// NewOpenAILLM creates an OpenAI-backed LLM implementation.
// Returns an error if the API key or model is missing.
func NewOpenAILLM(config LLMConfig) (*OpenAILLM, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	client := openai.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	return &OpenAILLM{
		client: client,
		config: config,
	}, nil
}

// Generate sends the system policy and prompt to OpenAI and returns the text.
func (o *OpenAILLM) Generate(ctx context.Context, system, prompt string) (*Completion, error) {
	if prompt == "" {
		return nil, errors.Wrap(ErrInvalidConfig, "prompt cannot be empty")
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.config.Model),
		Messages:    messages,
		Temperature: openai.Float(float64(o.config.Temperature)),
	}
	if o.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.config.MaxTokens))
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(ErrLLMFailed, "openai: %v", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.Wrap(ErrLLMFailed, "openai: no response generated")
	}

	return &Completion{
		Text:         completion.Choices[0].Message.Content,
		ResponseID:   completion.ID,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:  int(completion.Usage.TotalTokens),
	}, nil
}
