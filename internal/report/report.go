// Package report renders score summaries for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/chartqa-eval/internal/pipeline"
	"github.com/abhisek/chartqa-eval/internal/ui/components"
	"github.com/abhisek/chartqa-eval/internal/ui/theme"
)

// barWidth is the width of the accuracy bar column, percentage included.
const barWidth = 24

// Options controls what the table shows.
type Options struct {
	Title string
	// PerSeed adds one row per seed above each averaged row.
	PerSeed bool
}

var headers = []string{"Model", "Split", "Seed", "Records", "Correct", "Lenient", "Bounded", "No answer", "Bounded accuracy"}

// Table renders summaries as an aligned table with an accuracy bar for the
// bounded tier.
func Table(summaries []pipeline.CellSummary, opts Options) string {
	var rows [][]string
	var averageRows []bool
	for _, s := range summaries {
		if !s.IsAverage() && !opts.PerSeed {
			continue
		}
		rows = append(rows, row(s))
		averageRows = append(averageRows, s.IsAverage())
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.TableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return theme.HeaderCell
			case opts.PerSeed && averageRows[r]:
				if isNumeric(c) {
					return theme.AverageCell.Align(lipgloss.Right)
				}
				return theme.AverageCell
			case isNumeric(c):
				return theme.NumberCell
			default:
				return theme.Cell
			}
		})

	out := t.Render()
	if opts.Title != "" {
		out = theme.Title.Render(opts.Title) + "\n" + out
	}
	return out
}

// Write renders the table to w, downsampling colors to what w supports.
func Write(w io.Writer, summaries []pipeline.CellSummary, opts Options) error {
	if len(summaries) == 0 {
		_, err := lipgloss.Fprintln(w, theme.Hint.Render("No processed records found."))
		return err
	}
	_, err := lipgloss.Fprintln(w, Table(summaries, opts))
	return err
}

// WriteJSON writes summaries as an indented JSON array.
func WriteJSON(w io.Writer, summaries []pipeline.CellSummary) error {
	if summaries == nil {
		summaries = []pipeline.CellSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}
	return nil
}

func row(s pipeline.CellSummary) []string {
	seed := "avg"
	if s.Seed != nil {
		seed = strconv.Itoa(*s.Seed)
	}
	return []string{
		s.Model,
		s.Split,
		seed,
		strconv.Itoa(s.Records),
		Percent(s.Correct),
		Percent(s.Lenient),
		Percent(s.LenientBounded),
		strconv.Itoa(s.NotProvided),
		components.NewAccuracyBar(s.LenientBounded, false, barWidth).View(),
	}
}

// isNumeric reports columns holding right-aligned figures.
func isNumeric(col int) bool {
	return col >= 2 && col <= 7
}

// Percent formats an accuracy fraction with one decimal.
func Percent(acc float64) string {
	return strconv.FormatFloat(acc*100, 'f', 1, 64) + "%"
}
