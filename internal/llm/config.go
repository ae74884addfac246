package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all completion provider configuration.
type Config struct {
	// Provider selects which backend to use.
	// Values: "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string

	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// KeyFile, when set, holds the API key of the selected provider as
	// the whole file content. It is read only if no key was configured.
	KeyFile string

	// Timeout bounds a single attempt. Default: 30s.
	Timeout time.Duration

	// MaxTokens caps each completion. Default: 64, enough for one
	// canonical answer sentence.
	MaxTokens int
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-3.5-turbo-instruct"
	BaseURL string // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "openai/gpt-3.5-turbo-instruct"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		OpenAI: OpenAIConfig{
			Model: "gpt-3.5-turbo-instruct",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-3.5-turbo-instruct",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:   30 * time.Second,
		MaxTokens: 64,
	}
}

// apiKey returns a pointer to the selected provider's key field.
func (c *Config) apiKey() *string {
	switch c.Provider {
	case "openai":
		return &c.OpenAI.APIKey
	case "anthropic":
		return &c.Anthropic.APIKey
	case "gemini":
		return &c.Gemini.APIKey
	case "openrouter":
		return &c.OpenRouter.APIKey
	}
	return nil
}

// LoadKeyFile fills the selected provider's API key from KeyFile when the
// key is not already set. Surrounding whitespace in the file is ignored.
func (c *Config) LoadKeyFile() error {
	key := c.apiKey()
	if c.KeyFile == "" || key == nil || *key != "" {
		return nil
	}
	b, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}
	*key = strings.TrimSpace(string(b))
	if *key == "" {
		return fmt.Errorf("key file %s is empty", c.KeyFile)
	}
	return nil
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("CHARTQA_OPENAI_API_KEY (or --key-file) is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("CHARTQA_ANTHROPIC_API_KEY (or --key-file) is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("CHARTQA_GEMINI_API_KEY (or --key-file) is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("CHARTQA_OPENROUTER_API_KEY (or --key-file) is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown completion provider: %q", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
