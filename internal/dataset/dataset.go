// Package dataset describes the question sources, their splits and the
// models under evaluation, together with the on-disk layout of raw and
// processed results.
package dataset

import (
	"fmt"
	"strings"
)

// Name identifies a question source.
type Name string

const (
	Synthetic Name = "Synthetic"
	ChartQA   Name = "ChartQA"
)

// Names returns every known dataset in a stable order.
func Names() []Name {
	return []Name{Synthetic, ChartQA}
}

// ParseName resolves a dataset name case-insensitively.
func ParseName(s string) (Name, error) {
	for _, n := range Names() {
		if strings.EqualFold(s, string(n)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown dataset %q", s)
}

// QuestionColumn is the column holding the question text in source files.
func (n Name) QuestionColumn() string {
	if n == ChartQA {
		return "query"
	}
	return "question"
}

// AnswerColumn is the column holding the gold answer in source files.
func (n Name) AnswerColumn() string {
	if n == ChartQA {
		return "label"
	}
	return "gold_answer"
}

// FigureColumn is the column holding the figure identifier in source files.
func (n Name) FigureColumn() string {
	if n == ChartQA {
		return "imgname"
	}
	return "figure_id"
}

// IDColumn is the question identifier column shared by both sources.
func (n Name) IDColumn() string { return "q_id" }

// RequiredSourceColumns lists the columns every question row must carry.
func (n Name) RequiredSourceColumns() []string {
	cols := []string{n.IDColumn(), n.QuestionColumn(), n.AnswerColumn(), n.FigureColumn()}
	if n == Synthetic {
		cols = append(cols, "question_type", "x_range", "y_range")
	}
	return cols
}

// Splits returns the splits that belong to this dataset.
func (n Name) Splits() []Split {
	var out []Split
	for _, s := range Splits() {
		if s.Dataset() == n {
			out = append(out, s)
		}
	}
	return out
}

// Split is a named subset of questions.
type Split string

const (
	Bar        Split = "bar"
	Scatter    Split = "scatter"
	Pie        Split = "pie"
	Additional Split = "additional"
	Original   Split = "original"
)

// Splits returns every known split in a stable order.
func Splits() []Split {
	return []Split{Bar, Scatter, Pie, Additional, Original}
}

// ParseSplit resolves a split name case-insensitively.
func ParseSplit(s string) (Split, error) {
	for _, sp := range Splits() {
		if strings.EqualFold(s, string(sp)) {
			return sp, nil
		}
	}
	return "", fmt.Errorf("unknown split %q", s)
}

// Dataset returns the question source a split belongs to, or "" for an
// unknown split.
func (s Split) Dataset() Name {
	switch s {
	case Bar, Scatter, Pie:
		return Synthetic
	case Additional, Original:
		return ChartQA
	}
	return ""
}

// Seeds are the sampling seeds every model was run with.
var Seeds = []int{0, 1, 2, 3, 4}
