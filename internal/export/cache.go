package export

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ironsheep/caption-art/internal/adapter"
	"github.com/ironsheep/caption-art/internal/imaging"
)

// cacheKey identifies a scaled surface. The digest keeps two different
// images of the same size apart.
type cacheKey struct {
	width        int
	height       int
	maxDimension int
	digest       uint64
}

func newCacheKey(s *imaging.Surface, maxDimension int) cacheKey {
	return cacheKey{
		width:        s.Width,
		height:       s.Height,
		maxDimension: maxDimension,
		digest:       xxhash.Sum64(s.Pix),
	}
}

type cacheEntry struct {
	surface *imaging.Surface
	expires time.Time
}

// scaledCache holds scaled surfaces for a fixed TTL. Expired entries are
// purged lazily on access.
type scaledCache struct {
	mu      sync.Mutex
	clock   adapter.Clock
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

func newScaledCache(clock adapter.Clock, ttl time.Duration) *scaledCache {
	return &scaledCache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *scaledCache) get(key cacheKey) (*imaging.Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.surface, true
}

func (c *scaledCache) put(key cacheKey, s *imaging.Surface) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked()
	c.entries[key] = cacheEntry{surface: s, expires: c.clock.Now().Add(c.ttl)}
}

func (c *scaledCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *scaledCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *scaledCache) purgeLocked() {
	if len(c.entries) == 0 {
		return
	}
	now := c.clock.Now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}
