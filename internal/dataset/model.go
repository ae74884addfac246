package dataset

import (
	"fmt"
	"strings"
)

// Model identifies a vision-language model whose outputs are evaluated.
type Model string

const (
	GPT4       Model = "GPT4"
	GeminiPro  Model = "GeminiPro"
	ChartLlama Model = "ChartLlama"
	CogVLM     Model = "CogVLM"
	Pali       Model = "Pali"
)

// Models returns every known model in a stable order.
func Models() []Model {
	return []Model{GPT4, GeminiPro, ChartLlama, CogVLM, Pali}
}

// ParseModel resolves a model name case-insensitively.
func ParseModel(s string) (Model, error) {
	for _, m := range Models() {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown model %q", s)
}

// Columns names the fields of a model's raw output rows.
type Columns struct {
	ID       string
	Question string
	Output   string
}

// Required lists the columns as a slice, in ID/Question/Output order.
func (c Columns) Required() []string {
	return []string{c.ID, c.Question, c.Output}
}

// columnRule holds the raw-output layout for one model. Question and
// output columns may differ per dataset; a missing entry falls back to the
// "" key.
type columnRule struct {
	id       string
	question map[Name]string
	output   map[Name]string
}

var columnTable = map[Model]columnRule{
	GPT4: {
		id:       "q_id",
		question: map[Name]string{"": "question"},
		output:   map[Name]string{"": "model_output"},
	},
	GeminiPro: {
		id:       "q_id",
		question: map[Name]string{"": "question"},
		output:   map[Name]string{"": "model_output"},
	},
	CogVLM: {
		id:       "q_id",
		question: map[Name]string{Synthetic: "question", ChartQA: "query"},
		output:   map[Name]string{"": "model_output"},
	},
	Pali: {
		id:       "q_id",
		question: map[Name]string{Synthetic: "question", ChartQA: "query"},
		output:   map[Name]string{Synthetic: "model_answer", ChartQA: "model_output"},
	},
	ChartLlama: {
		id:       "question_id",
		question: map[Name]string{"": "prompt"},
		output:   map[Name]string{"": "text"},
	},
}

// Columns returns the raw-output column names for this model on dataset d.
func (m Model) Columns(d Name) (Columns, error) {
	rule, ok := columnTable[m]
	if !ok {
		return Columns{}, fmt.Errorf("unknown model %q", m)
	}
	q, err := lookupColumn(rule.question, d)
	if err != nil {
		return Columns{}, fmt.Errorf("%s question column: %w", m, err)
	}
	out, err := lookupColumn(rule.output, d)
	if err != nil {
		return Columns{}, fmt.Errorf("%s output column: %w", m, err)
	}
	return Columns{ID: rule.id, Question: q, Output: out}, nil
}

func lookupColumn(cols map[Name]string, d Name) (string, error) {
	if c, ok := cols[d]; ok {
		return c, nil
	}
	if c, ok := cols[""]; ok {
		return c, nil
	}
	return "", fmt.Errorf("no column for dataset %q", d)
}

// Skipped reports cells that were never produced. Pali has no scatter
// outputs.
func Skipped(m Model, s Split) bool {
	return m == Pali && s == Scatter
}
