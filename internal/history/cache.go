package history

import (
	"sync"
	"time"
)

// statsCacheTTL bounds how long StatsPerField may serve a stale answer
// when another process writes the same database
const statsCacheTTL = 30 * time.Second

// cacheEntry holds cached stats and metadata
type cacheEntry struct {
	stats       []Stats
	lastRefresh time.Time
}

// statsCache caches StatsPerField results per document. Writes through the
// owning Manager invalidate it.
type statsCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry // key: document, "" for all
	ttl     time.Duration
	now     func() time.Time
}

func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get retrieves cached stats if available and fresh
func (c *statsCache) get(document string) ([]Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[document]
	if !exists || c.now().Sub(entry.lastRefresh) > c.ttl {
		return nil, false
	}
	return entry.stats, true
}

func (c *statsCache) set(document string, stats []Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[document] = &cacheEntry{
		stats:       stats,
		lastRefresh: c.now(),
	}
}

// invalidate clears all cached data
func (c *statsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
}
