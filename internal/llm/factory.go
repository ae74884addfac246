package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/chartqa-eval/internal/store"
)

// Stores carries the persistence the middleware chain writes to. Cache may
// be nil to disable caching.
type Stores struct {
	Events store.EventRepo
	Cache  store.CacheRepo
}

// NewProvider creates a Provider from configuration, wrapped as
// caller → cache → retry → timeout → logging → base.
func NewProvider(ctx context.Context, cfg Config, st Stores) (Provider, error) {
	if err := cfg.LoadKeyFile(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown completion provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return wrap(base, cfg, st), nil
}

func wrap(base Provider, cfg Config, st Stores) Provider {
	p := base
	if st.Events != nil {
		p = WithLogging(p, cfg.Provider, st.Events)
	}
	p = WithTimeout(p, cfg.Timeout)
	p = WithRetry(p, cfg.Retry)
	if st.Cache != nil {
		p = WithCache(p, st.Cache)
	}
	return p
}
