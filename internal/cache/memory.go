package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache. Expired entries are dropped lazily
// on read and swept whenever the map grows past its high-water mark.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// NewMemory creates a MemoryCache bounded to maxEntries. Zero means 1024.
func NewMemory(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached value if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores the value until now+ttl.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.sweep()
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// sweep removes expired entries; if nothing expired, drops arbitrary entries
// to make room. Callers hold the lock.
func (c *MemoryCache) sweep() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	for k := range c.entries {
		if len(c.entries) < c.maxEntries {
			break
		}
		delete(c.entries, k)
	}
}

// Close releases nothing; it satisfies the Cache interface.
func (c *MemoryCache) Close() error { return nil }
