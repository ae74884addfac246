package normalize

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Exemplar is one worked example shown to the completion model.
type Exemplar struct {
	Question    string `yaml:"question"`
	ModelAnswer string `yaml:"model_answer"`
	Answer      string `yaml:"answer"`
}

// PromptSet holds the shared instruction text and the exemplars of every
// prompted model family.
type PromptSet struct {
	Instruction string                `yaml:"instruction"`
	Task        string                `yaml:"task"`
	Families    map[string][]Exemplar `yaml:"families"`
}

var (
	promptsOnce sync.Once
	prompts     *PromptSet
	promptsErr  error
)

// LoadPrompts parses the embedded exemplar file once.
func LoadPrompts() (*PromptSet, error) {
	promptsOnce.Do(func() {
		prompts, promptsErr = ParsePrompts(promptsYAML)
	})
	return prompts, promptsErr
}

// ParsePrompts decodes a prompt set and checks that every family has at
// least one exemplar.
func ParsePrompts(data []byte) (*PromptSet, error) {
	var ps PromptSet
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if ps.Instruction == "" || ps.Task == "" {
		return nil, fmt.Errorf("parse prompts: instruction and task are required")
	}
	for name, ex := range ps.Families {
		if len(ex) == 0 {
			return nil, fmt.Errorf("parse prompts: family %q has no exemplars", name)
		}
	}
	return &ps, nil
}

// Family returns the exemplars for a model family, matched case-insensitively.
func (ps *PromptSet) Family(name string) ([]Exemplar, bool) {
	ex, ok := ps.Families[strings.ToLower(name)]
	return ex, ok
}

var promptTemplate = template.Must(template.New("extract").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`{{.Instruction}}
{{range $i, $ex := .Exemplars}}
Example {{inc $i}}:
Question: "{{$ex.Question}}"
Model Answer: "{{$ex.ModelAnswer}}"
Extracted Answer: The answer is {{$ex.Answer}}. I hope the answer is correct.
{{end}}
Your Task:
{{.Task}}

Question: "{{.Question}}"
Model Answer: "{{.ModelAnswer}}"
Extracted Answer:`))

type promptData struct {
	Instruction string
	Task        string
	Exemplars   []Exemplar
	Question    string
	ModelAnswer string
}

// BuildPrompt renders the few-shot extraction prompt for one response.
func (ps *PromptSet) BuildPrompt(family, question, modelAnswer string) (string, error) {
	ex, ok := ps.Family(family)
	if !ok {
		return "", fmt.Errorf("no exemplars for model family %q", family)
	}
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Instruction: ps.Instruction,
		Task:        ps.Task,
		Exemplars:   ex,
		Question:    question,
		ModelAnswer: modelAnswer,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
