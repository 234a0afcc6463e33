package httpcache

import (
	"time"

	"github.com/dpearson/cachingproxy/internal/lru"
)

// Cache is the response cache: an LRU store of CachedResponse keyed by
// cache key string, bounded by an aggregate memory budget. A single
// mutex (inside the underlying lru.Store) serializes every Lookup/Store;
// callers must drain upstream bodies into a CachedResponse (see
// MaterializeForCache) before calling Store, so that body I/O never
// happens while the cache mutex is held.
type Cache struct {
	store *lru.Store[string, CachedResponse]
}

// NewCache creates a response cache with the given aggregate memory
// budget in bytes.
func NewCache(maxBytes int) *Cache {
	return &Cache{store: lru.New[string, CachedResponse](maxBytes)}
}

// Lookup returns the cached response for key, promoting it to
// most-recently-used. Expired entries are never returned.
func (c *Cache) Lookup(key string) (CachedResponse, bool) {
	return c.store.Get(key)
}

// Store records resp under key with an absolute expiry of now+ttl. If
// resp's memory footprint exceeds the cache's budget, it is silently not
// stored.
func (c *Cache) Store(key string, resp CachedResponse, ttl time.Duration) {
	c.store.Insert(key, resp, resp.MemoryFootprint(), time.Now().Add(ttl))
}

// Remove evicts key unconditionally.
func (c *Cache) Remove(key string) {
	c.store.Remove(key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.store.Clear()
}

// Len returns the number of live (non-expired) entries.
func (c *Cache) Len() int {
	return c.store.Len()
}

// UsedBytes returns the cache's current aggregate memory charge, exposed
// for the cache-bytes-used metrics gauge.
func (c *Cache) UsedBytes() int {
	return c.store.UsedBytes()
}

// Keys returns a snapshot of the live cache keys, for debug introspection.
func (c *Cache) Keys() []string {
	return c.store.Keys()
}
