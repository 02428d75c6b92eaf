package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements a bounded in-memory cache with no time-based expiry.
// The reference datasets change rarely, so entries live until an explicit
// Clear or until the entry bound is hit, at which point the cache is flushed
// and repopulated on demand.
type MemoryCache struct {
	cache      *gocache.Cache
	maxEntries int
}

// NewMemoryCache creates a bounded memory cache
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &MemoryCache{
		cache:      gocache.New(gocache.NoExpiration, 0),
		maxEntries: maxEntries,
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

// Set stores a value, flushing the whole cache first if the bound is reached.
// Evict-and-recompute keeps every stored entry immutable.
func (c *MemoryCache) Set(key string, value interface{}) {
	if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxEntries {
		c.cache.Flush()
	}
	c.cache.Set(key, value, gocache.NoExpiration)
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
