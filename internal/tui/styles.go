// Package tui holds the terminal presentation: prompts, the progress
// spinner and verdict rendering.
package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains lipgloss styles for terminal output
type Styles struct {
	Title   lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Border  lipgloss.Style
	Key     lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(0, 1),
		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")),
	}
}

// PlainStyles renders without color or borders, for --no-color and pipes
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Status:  plain,
		Error:   plain,
		Success: plain,
		Warning: plain,
		Muted:   plain,
		Border:  plain,
		Key:     plain,
	}
}
