package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/abhisek/chartqa-eval/internal/store"
)

// CachingProvider serves repeated requests from the completion cache.
// Only successful responses are stored.
type CachingProvider struct {
	inner Provider
	cache store.CacheRepo
}

// WithCache wraps a Provider with a persistent response cache.
func WithCache(p Provider, cache store.CacheRepo) Provider {
	return &CachingProvider{inner: p, cache: cache}
}

func (c *CachingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	key := CacheKey(c.inner.ModelID(), req)

	text, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("completion cache read failed", "err", err)
	} else if ok {
		return &Response{Text: text, Model: c.inner.ModelID(), StopReason: "end", Cached: true}, nil
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, c.inner.ModelID(), resp.Text); err != nil {
		slog.Warn("completion cache write failed", "err", err)
	}
	return resp, nil
}

func (c *CachingProvider) ModelID() string {
	return c.inner.ModelID()
}

// CacheKey digests everything that determines a completion: the model and
// the full request.
func CacheKey(model string, req Request) string {
	b, _ := json.Marshal(struct {
		Model string
		Req   Request
	}{model, req})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
