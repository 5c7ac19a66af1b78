package store

import (
	"context"
	"time"

	"github.com/sells-group/charity-prospector/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the prospecting pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, params model.SearchParams) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Upstream response cache
	GetCachedResponse(ctx context.Context, key string) ([]byte, error)
	SetCachedResponse(ctx context.Context, key string, body []byte, ttl time.Duration) error
	DeleteExpiredResponses(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ResponseCache adapts a Store's response-cache tables to the boolean-hit
// interface the API client expects. Store errors degrade to cache misses;
// a broken cache must never fail a fetch.
type ResponseCache struct {
	store Store
}

// NewResponseCache wraps a store as an HTTP response cache.
func NewResponseCache(s Store) *ResponseCache {
	return &ResponseCache{store: s}
}

func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.store.GetCachedResponse(ctx, key)
	if err != nil || body == nil {
		return nil, false
	}
	return body, true
}

func (c *ResponseCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	_ = c.store.SetCachedResponse(ctx, key, body, ttl)
}
