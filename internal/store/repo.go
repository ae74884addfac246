package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	RunID   string    // exact run id match
	Purpose string    // exact purpose match
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// CompletionEvent is one recorded call to a completion provider.
type CompletionEvent struct {
	ID           int64
	Timestamp    time.Time
	RunID        string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one served model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to completion events.
type EventRepo interface {
	// AppendCompletion records a completion call. A zero Timestamp is set
	// to the current time.
	AppendCompletion(ctx context.Context, e CompletionEvent) error

	// QueryCompletions returns events newest first.
	QueryCompletions(ctx context.Context, opts QueryOpts) ([]CompletionEvent, error)

	// GetCompletion returns the event with the given id, or nil if absent.
	GetCompletion(ctx context.Context, id int64) (*CompletionEvent, error)

	UsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	UsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// CacheRepo stores completion texts keyed by a request digest.
type CacheRepo interface {
	// Get returns the cached text and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores or replaces the text for key.
	Put(ctx context.Context, key, model, text string) error

	// Clear removes every cached entry and returns how many there were.
	Clear(ctx context.Context) (int64, error)
}
