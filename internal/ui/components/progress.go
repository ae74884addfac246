package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/chartqa-eval/internal/ui/theme"
)

// AccuracyBar displays an accuracy as a horizontal bar.
type AccuracyBar struct {
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewAccuracyBar creates a new accuracy bar.
func NewAccuracyBar(percent float64, showPercent bool, width int) AccuracyBar {
	return AccuracyBar{
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the bar. Filled cells take the colour of the accuracy band.
func (p AccuracyBar) View() string {
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 7 // " 100.0%"
	}

	barWidth := p.Width - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth)*p.Percent + 0.5)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	result := theme.ForAccuracy(p.Percent).Render(strings.Repeat("█", filled)) +
		theme.BarEmpty.Render(strings.Repeat("░", empty))

	if p.ShowPercent {
		result += theme.Subtitle.Render(fmt.Sprintf(" %5.1f%%", p.Percent*100))
	}

	return result
}
