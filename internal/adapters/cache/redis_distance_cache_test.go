package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/ports"
)

func newTestCache(t *testing.T) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDistanceCache(client, time.Hour), mr
}

func TestRedisDistanceCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	a := domain.Location{Lat: 33.7490, Lng: -84.3880}
	b := domain.Location{Lat: 33.9526, Lng: -84.5499}

	if _, ok, err := c.Get(ctx, a, b); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v, want miss", ok, err)
	}

	want := ports.DistanceResult{Km: 27.3, Hours: 0.34, Method: ports.MethodNetwork}
	if err := c.Put(ctx, a, b, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, a, b)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRedisDistanceCacheIsDirectional(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	a := domain.Location{Lat: 33.7490, Lng: -84.3880}
	b := domain.Location{Lat: 33.9526, Lng: -84.5499}

	if err := c.Put(ctx, a, b, ports.DistanceResult{Km: 27.3, Method: ports.MethodNetwork}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Road distances are not symmetric; the reverse pair is its own entry.
	if _, ok, _ := c.Get(ctx, b, a); ok {
		t.Error("reverse lookup should miss")
	}
}

func TestRedisDistanceCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	a := domain.Location{Lat: 33.7490, Lng: -84.3880}
	b := domain.Location{Lat: 33.9526, Lng: -84.5499}

	if err := c.Put(ctx, a, b, ports.DistanceResult{Km: 27.3, Method: ports.MethodHaversine}); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	if _, ok, _ := c.Get(ctx, a, b); ok {
		t.Error("entry should expire after TTL")
	}
}
