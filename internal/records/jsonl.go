package records

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/chartqa-eval/internal/dataset"
)

// maxLineSize bounds a single JSONL row. Raw outputs with long candidate
// lists can exceed bufio's 64KiB default.
const maxLineSize = 16 << 20

// ReadQuestions reads and validates a question source file of dataset d.
func ReadQuestions(path string, d dataset.Name) ([]Question, error) {
	schema, err := compiledSchema("questions-"+string(d), questionSchema(d))
	if err != nil {
		return nil, err
	}

	var out []Question
	err = scanRows(path, schema, func(row map[string]any) error {
		q := Question{
			ID:         idOf(row[d.IDColumn()]),
			Text:       scalarString(row[d.QuestionColumn()]),
			GoldAnswer: answerString(row[d.AnswerColumn()]),
			FigureID:   scalarString(row[d.FigureColumn()]),
		}
		if d == dataset.Synthetic {
			x, xErr := scalarFloat(row["x_range"])
			if xErr != nil {
				return fmt.Errorf("x_range: %w", xErr)
			}
			y, yErr := scalarFloat(row["y_range"])
			if yErr != nil {
				return fmt.Errorf("y_range: %w", yErr)
			}
			q.Synthetic = true
			q.QuestionType = scalarString(row["question_type"])
			q.XRange, q.YRange = x, y
		}
		out = append(out, q)
		return nil
	})
	return out, err
}

// ReadRawOutputs reads and validates the raw output file of model m on
// dataset d, resolving each output cell to Text or Candidates.
func ReadRawOutputs(path string, m dataset.Model, d dataset.Name) ([]RawModelOutput, error) {
	cols, err := m.Columns(d)
	if err != nil {
		return nil, err
	}
	schema, err := compiledSchema(fmt.Sprintf("raw-%s-%s", m, d), rawSchema(m, cols))
	if err != nil {
		return nil, err
	}

	var out []RawModelOutput
	err = scanRows(path, schema, func(row map[string]any) error {
		out = append(out, RawModelOutput{
			ID:       idOf(row[cols.ID]),
			Question: scalarString(row[cols.Question]),
			Output:   rawOutputOf(row[cols.Output]),
		})
		return nil
	})
	return out, err
}

// ReadProcessed reads a processed output file.
func ReadProcessed(path string) ([]ProcessedRecord, error) {
	var out []ProcessedRecord
	err := scanLines(path, func(line []byte) error {
		var rec ProcessedRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// WriteProcessed writes recs as JSONL, creating parent directories and
// replacing any existing file.
func WriteProcessed(path string, recs []ProcessedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range recs {
		if err := enc.Encode(&recs[i]); err != nil {
			f.Close()
			return fmt.Errorf("encode row %d: %w", i+1, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func scanRows(path string, schema *jsonschema.Schema, fn func(map[string]any) error) error {
	return scanLines(path, func(line []byte) error {
		v, err := jsonschema.UnmarshalJSON(bytes.NewReader(line))
		if err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		if err := schema.Validate(v); err != nil {
			return fmt.Errorf("schema validation failed: %w", err)
		}
		row, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("row is not an object")
		}
		return fn(row)
	})
}

// scanLines calls fn for every non-blank line of path. Errors returned by
// fn are wrapped in a *RowError carrying the 1-based line number.
func scanLines(path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return &RowError{Path: path, Line: lineNo, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func rawOutputOf(v any) RawOutput {
	switch t := v.(type) {
	case string:
		return Text(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, scalarString(item))
		}
		return Candidates(out)
	default:
		return Candidates(nil)
	}
}

// idOf keeps whether an identifier cell was a JSON number.
func idOf(v any) QuestionID {
	if n, ok := v.(json.Number); ok {
		return NumberID(n.String())
	}
	return StringID(scalarString(v))
}

// answerString renders a gold answer. Numbers become their shortest
// decimal form, so 1e2 and 100.0 both read as "100".
func answerString(v any) string {
	if n, ok := v.(json.Number); ok {
		if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return scalarString(v)
}

// scalarString renders a decoded JSON scalar as text. Numbers keep their
// source spelling.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func scalarFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	}
	return 0, fmt.Errorf("not a number: %v", v)
}
