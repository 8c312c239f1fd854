package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is an advisory process-local store with per-entry TTL. It is a side
// channel only: every read path must behave correctly with the no-op
// implementation, just slower. Write paths never consult it.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
}

type memoryCache struct {
	c *gocache.Cache
}

// New returns an in-memory cache which purges expired entries every
// cleanupInterval.
func New(defaultTTL, cleanupInterval time.Duration) Cache {
	return &memoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *memoryCache) Get(key string) (any, bool) {
	return m.c.Get(key)
}

func (m *memoryCache) Set(key string, value any, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *memoryCache) Delete(key string) {
	m.c.Delete(key)
}

func (m *memoryCache) Clear() {
	m.c.Flush()
}

type noopCache struct{}

// Noop returns a cache that stores nothing. Used when caching is disabled and
// in tests that must observe every store read.
func Noop() Cache { return noopCache{} }

func (noopCache) Get(string) (any, bool)         { return nil, false }
func (noopCache) Set(string, any, time.Duration) {}
func (noopCache) Delete(string)                  {}
func (noopCache) Clear()                         {}
