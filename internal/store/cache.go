package store

import (
	"log"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a concurrency-safe in-memory cache where every entry carries its own TTL.
// Concurrent identical fetches may both call Set; the last writer wins.
type Cache struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
// Expired entries are evicted on access.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := c.data[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		log.Printf("DEBUG: cache expired for key %s", key)
		return nil, false
	}

	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl is ignored.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Cleanup removes expired entries and returns how many were removed.
func (c *Cache) Cleanup() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.data {
		if !now.Before(e.expiresAt) {
			delete(c.data, k)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("DEBUG: cleaned up %d expired cache entries", removed)
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
