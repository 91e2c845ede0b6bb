package ux

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by text output.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles returns styles bound to w. The color profile is detected from
// w, so styles degrade to plain text when w is not a terminal. noColor
// forces plain text.
func NewStyles(w io.Writer, noColor bool) Styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		plain := r.NewStyle()
		return Styles{
			Title:   plain,
			Muted:   plain,
			Header:  plain.Padding(0, 1),
			Cell:    plain.Padding(0, 1),
			Success: plain,
			Warning: plain,
			Error:   plain,
			Border:  plain,
		}
	}

	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Header: r.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("86")), // Cyan
		Cell: r.NewStyle().
			Padding(0, 1),
		Success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Error: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Border: r.NewStyle().
			Foreground(lipgloss.Color("63")),
	}
}
