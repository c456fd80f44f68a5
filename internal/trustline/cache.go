package trustline

import (
	"fmt"
	"sync"
	"time"

	"ledgerline/go-backend/internal/ledger"
)

// DefaultCacheTTL bounds how stale a cached trustline may be. Mutations made
// through this service refresh their entry synchronously; mutations made
// elsewhere stay invisible until the entry expires.
const DefaultCacheTTL = 5 * time.Minute

func cacheKey(account, currency, issuer string) string {
	return fmt.Sprintf("%s:%s:%s", account, currency, issuer)
}

type cacheEntry struct {
	line      ledger.Line
	exists    bool
	fetchedAt time.Time
}

// lineCache is a TTL cache over per-key trustline state. It also caches the
// fact that a line does not exist, so repeated lookups of an absent key stay
// off the network inside one TTL window.
type lineCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func newLineCache(ttl time.Duration, now func() time.Time) *lineCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &lineCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached line and whether it exists on ledger. ok is false
// when there is no fresh entry for the key.
func (c *lineCache) get(key string) (line ledger.Line, exists, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[key]
	if !found {
		return ledger.Line{}, false, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return ledger.Line{}, false, false
	}
	return e.line, e.exists, true
}

// put records the ledger's answer for a key, including "does not exist".
func (c *lineCache) put(key string, line ledger.Line, exists bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{line: line, exists: exists, fetchedAt: c.now()}
}

// evict drops a key immediately, typically after a removal.
func (c *lineCache) evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *lineCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
