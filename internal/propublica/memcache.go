package propublica

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache for runs without a persistent store.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	body      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory response cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memEntry)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.body, true
}

func (m *MemoryCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{body: body, expiresAt: time.Now().Add(ttl)}
}
