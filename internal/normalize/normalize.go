// Package normalize turns a model's raw output into the canonical answer
// sentence "The answer is <ANSWER>. I hope the answer is correct".
//
// Models that already answer in canonical form pass through unchanged.
// Free-form responses are rewritten by a text-completion service prompted
// with few-shot exemplars for the model family.
package normalize

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/llm"
	"github.com/abhisek/chartqa-eval/internal/records"
)

// ErrNoCompleter is returned when a prompted normalizer is requested
// without a completion service.
var ErrNoCompleter = errors.New("completion capability unavailable")

// Normalizer produces the canonical answer sentence for one raw output.
type Normalizer interface {
	Normalize(ctx context.Context, question string, raw records.RawOutput) (string, error)
}

// Completer sends a prompt to a text-completion service and returns the
// generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Passthrough returns the raw text unchanged.
type Passthrough struct{}

func (Passthrough) Normalize(_ context.Context, _ string, raw records.RawOutput) (string, error) {
	return raw.String(), nil
}

// Prompted asks a completion service to extract the answer from a
// free-form response.
type Prompted struct {
	family    string
	prompts   *PromptSet
	completer Completer
}

// NewPrompted returns a Prompted normalizer using the exemplars of family.
func NewPrompted(family string, prompts *PromptSet, c Completer) (*Prompted, error) {
	if c == nil {
		return nil, ErrNoCompleter
	}
	if _, ok := prompts.Family(family); !ok {
		return nil, fmt.Errorf("no exemplars for model family %q", family)
	}
	return &Prompted{family: family, prompts: prompts, completer: c}, nil
}

// Normalize returns the completion text verbatim.
func (p *Prompted) Normalize(ctx context.Context, question string, raw records.RawOutput) (string, error) {
	prompt, err := p.prompts.BuildPrompt(p.family, question, raw.String())
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	ctx = llm.WithPurpose(ctx, "answer-extraction")
	out, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("extract answer: %w", err)
	}
	return out, nil
}

// ListUnwrap reduces a candidate list to its first entry, or "" when the
// list is empty, before delegating. Text passes through to the delegate.
type ListUnwrap struct {
	Next Normalizer
}

func (u ListUnwrap) Normalize(ctx context.Context, question string, raw records.RawOutput) (string, error) {
	return u.Next.Normalize(ctx, question, records.Text(raw.String()))
}

// RequiresCompleter reports whether normalizing m's outputs calls the
// completion service.
func RequiresCompleter(m dataset.Model) bool {
	switch m {
	case dataset.CogVLM, dataset.ChartLlama, dataset.Pali:
		return true
	}
	return false
}

// For returns the normalizer for a model. c may be nil for models that
// answer in canonical form.
func For(m dataset.Model, c Completer) (Normalizer, error) {
	switch m {
	case dataset.GPT4, dataset.GeminiPro:
		return Passthrough{}, nil
	}
	if !RequiresCompleter(m) {
		return nil, fmt.Errorf("unknown model %q", m)
	}

	ps, err := LoadPrompts()
	if err != nil {
		return nil, err
	}
	p, err := NewPrompted(string(m), ps, c)
	if err != nil {
		return nil, fmt.Errorf("normalizer for %s: %w", m, err)
	}
	if m == dataset.Pali {
		return ListUnwrap{Next: p}, nil
	}
	return p, nil
}
