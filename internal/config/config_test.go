package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix+"_") || strings.HasSuffix(name, "_API_KEY") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 64, cfg.MaxTokens)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.False(t, cfg.NoCache)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHARTQA_ROOT", "/data/chartqa")
	t.Setenv("CHARTQA_WORKERS", "8")
	t.Setenv("CHARTQA_TIMEOUT", "5s")
	t.Setenv("CHARTQA_NO_CACHE", "true")
	t.Setenv("CHARTQA_OPENAI_API_KEY", "sk-prefixed")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/data/chartqa", cfg.Root)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.NoCache)
	assert.Equal(t, "sk-prefixed", cfg.OpenAIAPIKey)
}

func TestLoad_ConventionalKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.AnthropicAPIKey)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "chartqa.yaml")
	content := "root: /srv/eval\nprovider: openrouter\nmodel: openai/gpt-4o-mini\nworkers: 2\nlog_format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/eval", cfg.Root)
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "json", cfg.LogFormat)

	// The environment wins over the file.
	t.Setenv("CHARTQA_WORKERS", "6")
	cfg, err = Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Workers: 1, LogLevel: "debug", LogFormat: "json", MaxTokens: 64, MaxAttempts: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"zero tokens", func(c *Config) { c.MaxTokens = 0 }, "max tokens"},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, "max attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLLMConfig(t *testing.T) {
	c := Config{
		Provider:         "OpenRouter",
		Model:            "openai/gpt-4o-mini",
		BaseURL:          "http://localhost:9000/v1",
		KeyFile:          "/keys/openrouter",
		Timeout:          10 * time.Second,
		MaxTokens:        32,
		MaxAttempts:      5,
		OpenRouterAPIKey: "sk-or",
	}

	got := c.LLMConfig()
	assert.Equal(t, "openrouter", got.Provider)
	assert.Equal(t, "openai/gpt-4o-mini", got.OpenRouter.Model)
	assert.Equal(t, "http://localhost:9000/v1", got.OpenRouter.BaseURL)
	assert.Equal(t, "sk-or", got.OpenRouter.APIKey)
	assert.Equal(t, "/keys/openrouter", got.KeyFile)
	assert.Equal(t, 10*time.Second, got.Timeout)
	assert.Equal(t, 32, got.MaxTokens)
	assert.Equal(t, 5, got.Retry.MaxAttempts)

	// Other providers keep their defaults.
	assert.Equal(t, "gpt-3.5-turbo-instruct", got.OpenAI.Model)
	assert.Empty(t, got.OpenAI.BaseURL)
	require.NoError(t, got.Validate())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Config{LogLevel: "warn", LogFormat: "json"}.Logger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "unit", "GPT4/bar/0")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"unit":"GPT4/bar/0"`)

	_, err = Config{LogLevel: "nope", LogFormat: "text"}.Logger(&buf)
	assert.Error(t, err)
}
