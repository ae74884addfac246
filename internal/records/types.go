// Package records holds the row types exchanged with the flat JSONL files:
// question rows, raw model output rows and processed rows.
package records

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionID is a question identifier. Source files carry it either as a
// JSON number or as a string; it is written back in the same shape.
// Identifiers compare by their text, so a numeric 5 and a string "5" name
// the same question.
type QuestionID struct {
	text   string
	number bool
}

// StringID returns an identifier that encodes as a JSON string.
func StringID(s string) QuestionID {
	return QuestionID{text: s}
}

// NumberID returns an identifier that encodes as a bare JSON number. Text
// that is not a valid JSON number literal still encodes as a string.
func NumberID(s string) QuestionID {
	return QuestionID{text: s, number: true}
}

func (id QuestionID) String() string { return id.text }

// IsNumber reports whether the identifier was given as a JSON number.
func (id QuestionID) IsNumber() bool { return id.number }

// MarshalJSON writes numeric identifiers as JSON numbers and everything
// else as JSON strings.
func (id QuestionID) MarshalJSON() ([]byte, error) {
	if id.number && isNumberLiteral(id.text) {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

// UnmarshalJSON accepts a JSON number or string.
func (id *QuestionID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = StringID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("question id: %w", err)
	}
	*id = NumberID(n.String())
	return nil
}

func isNumberLiteral(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// Question is one row of a question source file.
type Question struct {
	ID         QuestionID
	Text       string
	GoldAnswer string
	FigureID   string

	// Synthetic-only fields. Synthetic is false for ChartQA rows and the
	// remaining fields are then zero.
	Synthetic    bool
	QuestionType string
	XRange       float64
	YRange       float64
}

type rawKind int

const (
	rawText rawKind = iota
	rawCandidates
)

// RawOutput is a model's raw answer: either plain text or a list of
// candidate strings. The zero value is an empty Text.
type RawOutput struct {
	kind       rawKind
	text       string
	candidates []string
}

// Text wraps a plain-text raw output.
func Text(s string) RawOutput {
	return RawOutput{kind: rawText, text: s}
}

// Candidates wraps a list of candidate answers. A nil or empty list is
// valid.
func Candidates(c []string) RawOutput {
	return RawOutput{kind: rawCandidates, candidates: c}
}

// IsCandidates reports whether the output is a candidate list.
func (r RawOutput) IsCandidates() bool { return r.kind == rawCandidates }

// CandidateList returns the candidates, or nil for a Text output.
func (r RawOutput) CandidateList() []string { return r.candidates }

// String returns the textual form: the text itself, the first candidate,
// or "" for an empty candidate list.
func (r RawOutput) String() string {
	if r.kind == rawText {
		return r.text
	}
	if len(r.candidates) == 0 {
		return ""
	}
	return r.candidates[0]
}

// RawModelOutput is one row of a model's raw output file.
type RawModelOutput struct {
	ID       QuestionID
	Question string
	Output   RawOutput
}

// ProcessedRecord is the denormalized row written after normalization.
// Field order matches the on-disk column order.
type ProcessedRecord struct {
	ModelName            string     `json:"model_name"`
	Split                string     `json:"split"`
	Seed                 int        `json:"seed"`
	QuestionID           QuestionID `json:"question_id"`
	Question             string     `json:"question"`
	CorrectAnswer        string     `json:"correct_answer"`
	ModelRawOutput       string     `json:"model_raw_output"`
	ModelFormattedOutput string     `json:"model_formatted_output"`
	FigureID             string     `json:"figure_id"`
	QuestionType         *string    `json:"question_type,omitempty"`
	XRange               *float64   `json:"x_range,omitempty"`
	YRange               *float64   `json:"y_range,omitempty"`
}

// RowError locates a decoding or validation failure in a JSONL file.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
