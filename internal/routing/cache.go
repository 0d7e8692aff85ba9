package routing

import (
	"sync"
	"time"
)

// Thread-safe, bounded, TTL-expiring, LRU-evicting cache of road-network
// graphs keyed by rounded bounding box. Graphs are large and every access
// mutates recency state, so a single mutex guards both reads and writes.
type NetworkCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*cacheEntry

	// now is swapped out by tests to control expiry.
	now func() time.Time
}

type cacheEntry struct {
	box        BoundingBox
	graph      *RoadNetwork
	storedAt   time.Time
	lastAccess time.Time
}

// Snapshot of cache occupancy.
type CacheStats struct {
	Entries            int
	Expired            int
	Capacity           int
	UtilizationPercent float64
}

// NewNetworkCache builds a cache holding at most capacity graphs, each
// valid for ttl after insertion.
func NewNetworkCache(capacity int, ttl time.Duration) *NetworkCache {
	if capacity < 1 {
		capacity = 1
	}
	return &NetworkCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry, capacity),
		now:      time.Now,
	}
}

// Get returns the cached graph for the box if present and not expired.
// An expired entry is removed and reported as a miss. A hit refreshes the
// entry's last-access time.
func (c *NetworkCache) Get(box BoundingBox) (*RoadNetwork, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := box.Key()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	entry.lastAccess = c.now()
	return entry.graph, true
}

// Put stores a graph for the box, evicting the least-recently-accessed
// entry when the cache is full. A nil graph is silently ignored.
func (c *NetworkCache) Put(box BoundingBox, graph *RoadNetwork) {
	if graph == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := box.Key()
	if entry, ok := c.entries[key]; ok {
		entry.graph = graph
		entry.storedAt = c.now()
		entry.lastAccess = c.now()
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.entries[key] = &cacheEntry{
		box:        box,
		graph:      graph,
		storedAt:   c.now(),
		lastAccess: c.now(),
	}
}

// Expire removes entries older than maxAge, or the configured TTL when
// maxAge is zero. Returns the number of entries removed.
func (c *NetworkCache) Expire(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := c.now().Add(-maxAge)
	for key, entry := range c.entries {
		if entry.storedAt.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes everything and returns the number of entries removed.
func (c *NetworkCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*cacheEntry, c.capacity)
	return n
}

// Stats reports current occupancy. Expired counts entries past their TTL
// that have not yet been removed by an access.
func (c *NetworkCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := 0
	for _, entry := range c.entries {
		if c.now().Sub(entry.storedAt) > c.ttl {
			expired++
		}
	}

	return CacheStats{
		Entries:            len(c.entries),
		Expired:            expired,
		Capacity:           c.capacity,
		UtilizationPercent: float64(len(c.entries)) / float64(c.capacity) * 100,
	}
}

// Overlaps returns the cached bounding boxes that geometrically intersect
// the query box, enabling coverage reuse by callers.
func (c *NetworkCache) Overlaps(box BoundingBox) []BoundingBox {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []BoundingBox
	for _, entry := range c.entries {
		if entry.box.Intersects(box) {
			out = append(out, entry.box)
		}
	}
	return out
}

// Caller must hold c.mu.
func (c *NetworkCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.lastAccess.Before(oldest) {
			oldestKey = key
			oldest = entry.lastAccess
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
