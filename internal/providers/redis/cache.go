package redis

import (
	"context"
	"path"
	"sync"
	"time"
)

// Cache is the subset of the provider used by services, so they can run
// against MemoryCache when Redis is not configured.
type Cache interface {
	GetData(ctx context.Context, key string) (string, bool)
	PutData(ctx context.Context, key, value string, ttl time.Duration)
	DeletePattern(ctx context.Context, pattern string) int
}

var _ Cache = (*RedisProvider)(nil)

type memoryEntry struct {
	value   string
	expires time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) GetData(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *MemoryCache) PutData(_ context.Context, key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
}

// DeletePattern accepts the same glob syntax as Redis SCAN MATCH for the
// '*' and '?' wildcards.
func (m *MemoryCache) DeletePattern(_ context.Context, pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			n++
		}
	}
	return n
}

// SetClock replaces the time source, for tests.
func (m *MemoryCache) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}
