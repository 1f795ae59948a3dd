// Package plan turns free-form model output into an ordered list of argument
// vectors. Everything here is pure: text in, commands (or an explicit error) out.
package plan

import (
	"strings"
)

const fenceMarker = "```"

// recognizedTags are the fence languages whose body is treated as commands.
// An untagged fence is also accepted.
var recognizedTags = map[string]bool{
	"bash":  true,
	"sh":    true,
	"shell": true,
}

// FencedBlock is one delimited region of a response.
type FencedBlock struct {
	Tag        string
	Lines      []string
	Terminated bool
}

// Recognized reports whether the block's tag marks it as a command block.
func (b FencedBlock) Recognized() bool {
	return isRecognizedTag(b.Tag)
}

func isRecognizedTag(tag string) bool {
	return tag == "" || recognizedTags[strings.ToLower(tag)]
}

// parseFenceTag returns the language tag of an opening fence line.
func parseFenceTag(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fenceMarker))
}

// Extract returns the trimmed body of the first fenced block tagged bash, sh,
// shell or left untagged. Blocks with any other tag are skipped. Only the first
// recognized block is considered; later blocks are ignored. An unterminated
// recognized block yields whatever was captured before the input ended.
// Returns "" when no recognized block exists.
func Extract(text string) string {
	inBlock := false
	capture := false
	var lines []string

	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, fenceMarker) {
			if !inBlock {
				inBlock = true
				capture = isRecognizedTag(parseFenceTag(line))
				continue
			}
			if capture {
				break
			}
			// Closing fence of a skipped block; keep scanning.
			inBlock = false
			continue
		}
		if inBlock && capture {
			lines = append(lines, line)
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Blocks returns every fenced block in text, in order. It is used to explain
// extraction results in diagnostics.
func Blocks(text string) []FencedBlock {
	var blocks []FencedBlock
	var current *FencedBlock

	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, fenceMarker) {
			if current == nil {
				current = &FencedBlock{Tag: parseFenceTag(line)}
				continue
			}
			current.Terminated = true
			blocks = append(blocks, *current)
			current = nil
			continue
		}
		if current != nil {
			current.Lines = append(current.Lines, line)
		}
	}
	if current != nil {
		blocks = append(blocks, *current)
	}

	return blocks
}

// splitLines splits on \n, \r\n and \r without producing a trailing empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
