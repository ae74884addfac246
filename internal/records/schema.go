package records

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/chartqa-eval/internal/dataset"
)

// schemaCache caches compiled row schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

var (
	idType     = []any{"integer", "string"}
	answerType = []any{"string", "number", "boolean"}
)

// questionSchema describes a question row of dataset d.
func questionSchema(d dataset.Name) map[string]any {
	props := map[string]any{
		d.IDColumn():       map[string]any{"type": idType},
		d.QuestionColumn(): map[string]any{"type": "string"},
		d.AnswerColumn():   map[string]any{"type": answerType},
		d.FigureColumn():   map[string]any{"type": []any{"string", "integer"}},
	}
	if d == dataset.Synthetic {
		props["question_type"] = map[string]any{"type": "string"}
		props["x_range"] = map[string]any{"type": "number", "exclusiveMinimum": 0}
		props["y_range"] = map[string]any{"type": "number", "exclusiveMinimum": 0}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   toAny(d.RequiredSourceColumns()),
	}
}

// rawSchema describes a raw output row of model m on dataset d. Pali rows
// may carry a candidate list, null, or nothing at all in the output column.
func rawSchema(m dataset.Model, cols dataset.Columns) map[string]any {
	output := map[string]any{"type": "string"}
	required := []any{cols.ID, cols.Question, cols.Output}
	if m == dataset.Pali {
		output = map[string]any{
			"type":  []any{"string", "array", "null"},
			"items": map[string]any{"type": "string"},
		}
		required = required[:2]
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			cols.ID:       map[string]any{"type": idType},
			cols.Question: map[string]any{"type": "string"},
			cols.Output:   output,
		},
		"required": required,
	}
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a parsed JSON value, not Go literals.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	var parsed any
	if err := json.Unmarshal(defBytes, &parsed); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
