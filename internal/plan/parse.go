package plan

import (
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
)

var (
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrTrailingEscape    = errors.New("trailing backslash escape")
)

// ParseError reports the block line that could not be tokenized.
type ParseError struct {
	// Line is the 1-based line number within the extracted block
	Line int

	// Text is the offending line after trimming
	Text string

	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Command is one argument vector; the first element is the program name.
type Command []string

// Program returns the program name, or "" for an empty command.
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// String renders the command as a copy-paste safe shell line.
func (c Command) String() string {
	quoted := make([]string, len(c))
	for i, part := range c {
		quoted[i] = Quote(part)
	}
	return strings.Join(quoted, " ")
}

// Plan is an ordered sequence of commands plus the run mode. Commands are
// executed strictly in order: a commit relies on the adds that precede it.
type Plan struct {
	Commands []Command
	Apply    bool
}

// Lines returns the rendered form of every command.
func (p Plan) Lines() []string {
	lines := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		lines[i] = c.String()
	}
	return lines
}

// Entry is a parsed command together with the block line it came from.
type Entry struct {
	// Line is the 1-based line number within the extracted block
	Line    int
	Source  string
	Command Command
}

// Parse splits an extracted block into commands, one per non-blank line.
// Any line with malformed quoting fails the whole parse and no commands are
// returned.
func Parse(block string) ([]Command, error) {
	entries, err := ParseEntries(block)
	if err != nil {
		return nil, err
	}

	var commands []Command
	for _, e := range entries {
		commands = append(commands, e.Command)
	}
	return commands, nil
}

// ParseEntries is Parse, keeping the source line of every command.
func ParseEntries(block string) ([]Entry, error) {
	var entries []Entry

	for i, raw := range splitLines(block) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		tokens, err := Split(line)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: line, Err: err}
		}
		if len(tokens) == 0 {
			continue
		}
		entries = append(entries, Entry{Line: i + 1, Source: line, Command: Command(tokens)})
	}

	return entries, nil
}

// Split tokenizes one line with POSIX shell word rules: whitespace separates
// words, single quotes are fully literal, double quotes are literal except
// that a backslash escapes $, `, ", \ and newline, and a backslash outside
// quotes escapes the next character. No expansion of any kind is performed.
func Split(line string) ([]string, error) {
	words, err := shellquote.Split(line)
	if err == nil {
		return words, nil
	}

	switch {
	case errors.Is(err, shellquote.UnterminatedSingleQuoteError),
		errors.Is(err, shellquote.UnterminatedDoubleQuoteError):
		return nil, ErrUnterminatedQuote
	case errors.Is(err, shellquote.UnterminatedEscapeError):
		return nil, ErrTrailingEscape
	}
	return nil, errors.Wrap(err, "split words")
}

// Quote returns a shell-escaped form of s. Safe tokens are returned as-is;
// everything else is wrapped in single quotes, with embedded single quotes
// written as '"'"'.
func Quote(s string) string {
	return shellescape.Quote(s)
}
