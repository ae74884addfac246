package llm

import "context"

// Completer adapts a Provider to single-prompt text completion.
type Completer struct {
	provider  Provider
	maxTokens int
}

// NewCompleter returns a Completer that sends each prompt as one user
// message at temperature 0.
func NewCompleter(p Provider, maxTokens int) *Completer {
	return &Completer{provider: p, maxTokens: maxTokens}
}

// Complete returns the model's text for prompt, unmodified.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.provider.Generate(ctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
