package scanner

import (
	"sync"
	"time"

	"github.com/turismolocal/poiscan/internal/model"
)

type cacheKey struct {
	Zone     string
	Category string
}

type cacheEntry struct {
	records []model.BusinessRecord
	at      time.Time
}

// zoneCache memoizes zone+category fetches so a repeated scan of the same
// cell skips the network. Bounded: entries expire after ttl and the map is
// capped at maxEntries, evicting the oldest. Safe for concurrent use since
// keyword batches within a zone run in parallel.
type zoneCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[cacheKey]cacheEntry
	now     func() time.Time
}

func newZoneCache(ttl time.Duration, maxEntries int) *zoneCache {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	return &zoneCache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[cacheKey]cacheEntry),
		now:     time.Now,
	}
}

func (c *zoneCache) Get(zone, category string) ([]model.BusinessRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey{zone, category}]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.at) > c.ttl {
		delete(c.entries, cacheKey{zone, category})
		return nil, false
	}
	return e.records, true
}

func (c *zoneCache) Put(zone, category string, records []model.BusinessRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.max {
		c.evictOldest()
	}
	c.entries[cacheKey{zone, category}] = cacheEntry{records: records, at: c.now()}
}

// Reset drops all entries.
func (c *zoneCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}

func (c *zoneCache) evictOldest() {
	var oldest cacheKey
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.at.Before(oldestAt) {
			oldest, oldestAt, first = k, e.at, false
		}
	}
	if !first {
		delete(c.entries, oldest)
	}
}
