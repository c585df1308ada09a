// Package cache provides in-memory caching for parlay suggestions.
package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/yourusername/tipster-edge/internal/edge"
)

// Entry is a cached selection result and when it was computed.
type Entry struct {
	Suggestions edge.ParlaySuggestions
	PoolSize    int
	ComputedAt  time.Time
}

// SuggestionCache caches parlay suggestions per candidate pool limit.
type SuggestionCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewSuggestionCache creates a cache whose entries expire after ttl.
func NewSuggestionCache(ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{
		cache: gocache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func key(poolLimit int) string {
	return fmt.Sprintf("parlays:%d", poolLimit)
}

// Get returns the cached entry for poolLimit, if any.
func (c *SuggestionCache) Get(poolLimit int) (*Entry, bool) {
	if v, found := c.cache.Get(key(poolLimit)); found {
		if entry, ok := v.(*Entry); ok {
			c.hitCount.Add(1)
			return entry, true
		}
	}
	c.missCount.Add(1)
	return nil, false
}

// Set stores an entry for poolLimit with the default TTL.
func (c *SuggestionCache) Set(poolLimit int, entry *Entry) {
	c.cache.Set(key(poolLimit), entry, c.ttl)
}

// Invalidate drops every cached entry.
func (c *SuggestionCache) Invalidate() {
	c.cache.Flush()
}

// Stats returns cache statistics
func (c *SuggestionCache) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount.Load()
	misses = c.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (c *SuggestionCache) ItemCount() int {
	return c.cache.ItemCount()
}
