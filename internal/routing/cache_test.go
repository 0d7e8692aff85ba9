package routing

import (
	"testing"
	"time"
)

func box(south, west float64) BoundingBox {
	return BoundingBox{South: south, West: west, North: south + 1, East: west + 1}
}

func emptyGraph() *RoadNetwork { return NewRoadNetwork(nil, nil) }

func TestCacheEvictsLeastRecentlyAccessed(t *testing.T) {
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewNetworkCache(3, time.Hour)
	c.now = func() time.Time { return clock }

	b1, b2, b3, b4 := box(10, 10), box(20, 20), box(30, 30), box(40, 40)

	c.Put(b1, emptyGraph())
	clock = clock.Add(time.Second)
	c.Put(b2, emptyGraph())
	clock = clock.Add(time.Second)
	c.Put(b3, emptyGraph())

	// Touch b1 so b2 becomes the least recently accessed entry.
	clock = clock.Add(time.Second)
	if _, ok := c.Get(b1); !ok {
		t.Fatal("expected b1 to be cached")
	}

	clock = clock.Add(time.Second)
	c.Put(b4, emptyGraph())

	if stats := c.Stats(); stats.Entries != 3 {
		t.Fatalf("entries = %d, want 3 (exactly one eviction)", stats.Entries)
	}
	if _, ok := c.Get(b2); ok {
		t.Error("b2 should have been evicted as least recently accessed")
	}
	if _, ok := c.Get(b1); !ok {
		t.Error("b1 should survive eviction")
	}
	if _, ok := c.Get(b4); !ok {
		t.Error("b4 should be present after insert")
	}
}

func TestCacheExpiredEntryIsMissAndRemoved(t *testing.T) {
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewNetworkCache(4, time.Hour)
	c.now = func() time.Time { return clock }

	b := box(10, 10)
	c.Put(b, emptyGraph())

	clock = clock.Add(2 * time.Hour)
	if _, ok := c.Get(b); ok {
		t.Fatal("expired entry should be a miss")
	}
	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("entries = %d, want 0 (expired entry removed on access)", stats.Entries)
	}
}

func TestCacheRejectsNilGraph(t *testing.T) {
	c := NewNetworkCache(4, time.Hour)
	c.Put(box(10, 10), nil)

	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("entries = %d, want 0 after nil put", stats.Entries)
	}
}

func TestCacheExpire(t *testing.T) {
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewNetworkCache(4, time.Hour)
	c.now = func() time.Time { return clock }

	c.Put(box(10, 10), emptyGraph())
	clock = clock.Add(30 * time.Minute)
	c.Put(box(20, 20), emptyGraph())
	clock = clock.Add(45 * time.Minute)

	// First entry is 75 minutes old, second 45.
	if removed := c.Expire(0); removed != 1 {
		t.Errorf("Expire(default) removed %d, want 1", removed)
	}
	if removed := c.Expire(time.Minute); removed != 1 {
		t.Errorf("Expire(1m) removed %d, want 1", removed)
	}
}

func TestCacheClearAndStats(t *testing.T) {
	c := NewNetworkCache(4, time.Hour)
	c.Put(box(10, 10), emptyGraph())
	c.Put(box(20, 20), emptyGraph())

	stats := c.Stats()
	if stats.Entries != 2 || stats.Capacity != 4 {
		t.Fatalf("stats = %+v, want 2 entries / capacity 4", stats)
	}
	if stats.UtilizationPercent != 50 {
		t.Errorf("utilization = %f, want 50", stats.UtilizationPercent)
	}

	if n := c.Clear(); n != 2 {
		t.Errorf("Clear removed %d, want 2", n)
	}
	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("entries after clear = %d, want 0", stats.Entries)
	}
}

func TestCacheOverlaps(t *testing.T) {
	c := NewNetworkCache(4, time.Hour)
	c.Put(box(10, 10), emptyGraph())
	c.Put(box(50, 50), emptyGraph())

	query := BoundingBox{South: 10.5, West: 10.5, North: 12, East: 12}
	hits := c.Overlaps(query)
	if len(hits) != 1 {
		t.Fatalf("overlaps = %d boxes, want 1", len(hits))
	}
	if hits[0].South != 10 || hits[0].West != 10 {
		t.Errorf("unexpected overlap box: %+v", hits[0])
	}
}
