package proposal

import "time"

// GenerationMetadata captures model configuration and token usage for a proposal.
type GenerationMetadata struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	ResponseID   string  `json:"response_id,omitempty"`
	Temperature  float32 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	InputTokens  int     `json:"input_tokens,omitempty"`
	OutputTokens int     `json:"output_tokens,omitempty"`
	TotalTokens  int     `json:"total_tokens,omitempty"`
	LatencyMS    int     `json:"latency_ms,omitempty"`
}

// Proposal is the raw model answer for one working tree snapshot.
type Proposal struct {
	// Text is the unmodified response; it may or may not contain a command block
	Text string `json:"text"`

	// GeneratedAt is when the response was received
	GeneratedAt time.Time `json:"generated_at"`

	Generation GenerationMetadata `json:"generation"`
}
