package services

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value   T
	fetched time.Time
}

// TTLCache holds values for a fixed time-to-live. Failed loads are not
// cached.
type TTLCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{entries: make(map[string]cacheEntry[T]), ttl: ttl, now: time.Now}
}

// isValid checks if an entry is still fresh
func (c *TTLCache[T]) isValid(e cacheEntry[T]) bool {
	return c.now().Sub(e.fetched) < c.ttl
}

func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !c.isValid(e) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[T]) Set(key string, value T) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[T]{value: value, fetched: c.now()}
	c.mu.Unlock()
}

// GetOrLoad returns the cached value if valid, otherwise fetches fresh.
// Concurrent misses may load twice; the last writer wins.
func (c *TTLCache[T]) GetOrLoad(key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Clear drops every entry.
func (c *TTLCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
