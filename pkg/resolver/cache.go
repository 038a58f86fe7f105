package resolver

import (
	"sync"
	"time"

	"cascadia-hq/halcyon/pkg/rulelang/ast"
)

// parseCache is a thread-safe cache of parsed condition trees keyed by the
// condition text, with TTL expiry and LRU eviction. Trees are immutable, so
// a cached tree can be shared across rule sets and evaluation contexts.
// Caching is an optimization only; resolution is correct without it.
type parseCache struct {
	entries map[string]*parseEntry

	// ttl is the time-to-live for entries (0 = no expiry)
	ttl time.Duration

	// maxEntries is the maximum number of entries (0 = unlimited)
	maxEntries int

	mu sync.RWMutex
}

type parseEntry struct {
	node           ast.Node
	expiresAt      time.Time
	lastAccessedAt time.Time
}

// newParseCache creates a cache with the given TTL and capacity.
func newParseCache(ttl time.Duration, maxEntries int) *parseCache {
	return &parseCache{
		entries:    make(map[string]*parseEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the cached tree for a condition string, if present and not
// expired.
func (c *parseCache) Get(condition string) (ast.Node, bool) {
	c.mu.RLock()
	entry, ok := c.entries[condition]
	if !ok {
		c.mu.RUnlock()
		return nil, false
	}
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.mu.RUnlock()
		return nil, false
	}
	node := entry.node
	c.mu.RUnlock()

	c.mu.Lock()
	// Re-check: the entry may have been evicted between locks.
	if entry, ok := c.entries[condition]; ok {
		entry.lastAccessedAt = time.Now()
	}
	c.mu.Unlock()

	return node, true
}

// Set stores a parsed tree, evicting the least recently used entry when the
// cache is at capacity.
func (c *parseCache) Set(condition string, node ast.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[condition]; !exists {
			c.evictLRU()
		}
	}

	now := time.Now()
	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	c.entries[condition] = &parseEntry{
		node:           node,
		expiresAt:      expiresAt,
		lastAccessedAt: now,
	}
}

// Size returns the current number of entries.
func (c *parseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLRU removes the least recently accessed entry.
// Must be called with the write lock held.
func (c *parseCache) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastAccessedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
