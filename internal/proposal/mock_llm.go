package proposal

import (
	"context"
	"strings"
)

// MockLLM is a deterministic LLM implementation for testing.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a command block is derived from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastSystem and LastPrompt store the most recent request.
	LastSystem string
	LastPrompt string

	// Calls counts Generate invocations.
	Calls int
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or generates a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, system, prompt string) (*Completion, error) {
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt

	if m.Error != nil {
		return nil, m.Error
	}

	text := m.Response
	if text == "" {
		text = generateMockResponse(prompt)
	}
	return &Completion{Text: text, TotalTokens: len(strings.Fields(prompt))}, nil
}

// generateMockResponse stages every path from the short status section and
// commits it in a single chore commit.
func generateMockResponse(prompt string) string {
	var b strings.Builder
	b.WriteString("```bash\n")

	paths := statusPaths(prompt)
	if len(paths) > 0 {
		b.WriteString("git add")
		for _, p := range paths {
			b.WriteString(" \"" + p + "\"")
		}
		b.WriteString("\n")
		b.WriteString("git commit -m \"chore: update files\"\n")
	}

	b.WriteString("```\n")
	return b.String()
}

func statusPaths(prompt string) []string {
	const header = "# git status --short\n"
	idx := strings.Index(prompt, header)
	if idx < 0 {
		return nil
	}
	section := prompt[idx+len(header):]
	if end := strings.Index(section, "\n\n"); end >= 0 {
		section = section[:end]
	}

	var paths []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == NoStatus {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		paths = append(paths, fields[len(fields)-1])
	}
	return paths
}
