package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Tables
var (
	TableBorder = lipgloss.NewStyle().
			Foreground(Border)

	HeaderCell = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary).
			Padding(0, 1)

	Cell = lipgloss.NewStyle().
		Foreground(Text).
		Padding(0, 1)

	NumberCell = Cell.
			Align(lipgloss.Right)

	AverageCell = Cell.
			Bold(true)
)

// Accuracy bands
var (
	High = lipgloss.NewStyle().
		Foreground(Success)

	Medium = lipgloss.NewStyle().
		Foreground(Accent)

	Low = lipgloss.NewStyle().
		Foreground(Error)

	BarEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

// ForAccuracy picks the band style for an accuracy in [0, 1].
func ForAccuracy(acc float64) lipgloss.Style {
	switch {
	case acc >= 0.7:
		return High
	case acc >= 0.4:
		return Medium
	default:
		return Low
	}
}
