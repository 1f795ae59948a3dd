// Package ui holds the terminal styles shared by the user-facing output.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerColor  = lipgloss.Color("#F780FF") // Bright pink
	commandColor = lipgloss.Color("#8BE9FD") // Cyan
	mutedColor   = lipgloss.Color("#6272A4") // Muted purple
	successColor = lipgloss.Color("#50FA7B") // Green
	warningColor = lipgloss.Color("#F1FA8C") // Yellow
	errorColor   = lipgloss.Color("#FF5555") // Red
)

// Styles renders single lines of output. Multi-line blobs such as git output
// are written unstyled.
type Styles struct {
	Header  lipgloss.Style
	Command lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the colored styles. lipgloss drops the colors on its
// own when the output is not a terminal.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Foreground(headerColor).Bold(true),
		Command: lipgloss.NewStyle().Foreground(commandColor),
		Muted:   lipgloss.NewStyle().Foreground(mutedColor).Italic(true),
		Success: lipgloss.NewStyle().Foreground(successColor),
		Warning: lipgloss.NewStyle().Foreground(warningColor),
		Error:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
	}
}

// PlainStyles renders text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:  plain,
		Command: plain,
		Muted:   plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
	}
}
