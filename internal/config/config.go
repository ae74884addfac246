// Package config materializes command settings from flags, CHARTQA_*
// environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/chartqa-eval/internal/dataset"
	"github.com/abhisek/chartqa-eval/internal/llm"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "CHARTQA"

// Config is the resolved configuration of one invocation.
type Config struct {
	Root      string `mapstructure:"root"`
	DB        string `mapstructure:"db"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Workers   int    `mapstructure:"workers"`
	NoCache   bool   `mapstructure:"no_cache"`

	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	KeyFile     string        `mapstructure:"key_file"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	MaxAttempts int           `mapstructure:"max_attempts"`

	OpenAIAPIKey     string `mapstructure:"openai_api_key"`
	AnthropicAPIKey  string `mapstructure:"anthropic_api_key"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	OpenRouterAPIKey string `mapstructure:"openrouter_api_key"`
}

// Layout returns the dataset layout rooted at Root.
func (c Config) Layout() dataset.Layout {
	return dataset.Layout{Root: c.Root}
}

// New returns a viper instance with defaults and environment bindings in
// place. API keys also fall back to the provider's conventional variable
// (OPENAI_API_KEY and so on).
func New() *viper.Viper {
	v := viper.New()

	llmDefaults := llm.DefaultConfig()
	v.SetDefault("root", ".")
	v.SetDefault("db", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("workers", 4)
	v.SetDefault("no_cache", false)
	v.SetDefault("provider", llmDefaults.Provider)
	v.SetDefault("model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("key_file", "")
	v.SetDefault("timeout", llmDefaults.Timeout)
	v.SetDefault("max_tokens", llmDefaults.MaxTokens)
	v.SetDefault("max_attempts", llmDefaults.Retry.MaxAttempts)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, p := range []string{"openai", "anthropic", "gemini", "openrouter"} {
		key := p + "_api_key"
		upper := strings.ToUpper(key)
		_ = v.BindEnv(key, EnvPrefix+"_"+upper, upper)
	}
	return v
}

// Load reads the config file, if any, and unmarshals the merged settings.
// A missing file at an explicit path is an error; no file at all is not.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that do not depend on the command being run.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	if c.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("max tokens must be at least 1, got %d", c.MaxTokens))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts))
	}
	return errors.Join(errs...)
}

// LLMConfig builds the completion provider configuration. Model and
// BaseURL apply to the selected provider only.
func (c Config) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = strings.ToLower(c.Provider)
	cfg.KeyFile = c.KeyFile
	cfg.Timeout = c.Timeout
	cfg.MaxTokens = c.MaxTokens
	cfg.Retry.MaxAttempts = c.MaxAttempts

	cfg.OpenAI.APIKey = c.OpenAIAPIKey
	cfg.Anthropic.APIKey = c.AnthropicAPIKey
	cfg.Gemini.APIKey = c.GeminiAPIKey
	cfg.OpenRouter.APIKey = c.OpenRouterAPIKey

	switch cfg.Provider {
	case "openai":
		if c.Model != "" {
			cfg.OpenAI.Model = c.Model
		}
		cfg.OpenAI.BaseURL = c.BaseURL
	case "anthropic":
		if c.Model != "" {
			cfg.Anthropic.Model = c.Model
		}
	case "gemini":
		if c.Model != "" {
			cfg.Gemini.Model = c.Model
		}
	case "openrouter":
		if c.Model != "" {
			cfg.OpenRouter.Model = c.Model
		}
		cfg.OpenRouter.BaseURL = c.BaseURL
	}
	return cfg
}

// Logger builds a slog logger writing to w at the configured level and
// format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
