package llm

import (
	"context"
	"strings"
)

// Provider is the core abstraction over a text-completion service.
type Provider interface {
	// Generate sends a prompt to the model and returns its text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Ignored by legacy completion models.
	System string

	// Messages is the conversation. Answer extraction sends one user
	// message holding the whole few-shot prompt.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response. Zero
	// leaves the provider default in place.
	MaxTokens int

	// Temperature controls randomness. Zero is deterministic.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Prompt flattens the request into a single prompt string for providers
// that take raw text instead of messages.
func (r Request) Prompt() string {
	var parts []string
	if r.System != "" {
		parts = append(parts, r.System)
	}
	for _, m := range r.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Response holds the model's output.
type Response struct {
	// Text is the generated text, unmodified.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string

	// Cached is set when the text came from the completion cache.
	Cached bool
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
