package chain

import (
	"sync"
	"time"

	"nse-analyst/internal/models"
)

// snapshotCache is a short-TTL cache keyed by symbol+expiry so that
// concurrent callers asking for the same chain do not each hit the
// exchange. Entries are immutable snapshots, safe to share.
type snapshotCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	snapshot *models.OptionChainSnapshot
	storedAt time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(symbol, expiry string) string {
	return symbol + "|" + expiry
}

func (c *snapshotCache) get(symbol, expiry string) (*models.OptionChainSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(symbol, expiry)]
	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.snapshot, true
}

func (c *snapshotCache) put(symbol, expiry string, snapshot *models.OptionChainSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(symbol, expiry)] = cacheEntry{snapshot: snapshot, storedAt: c.now()}
}
