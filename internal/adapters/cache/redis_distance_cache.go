package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/ports"
)

// RedisDistanceCache persists resolved coordinate-pair distance results in
// Redis so repeated lookups skip both the road-network fetch and the
// geometric computation. Keys round coordinates to five decimals (about a
// meter), so near-identical queries collide intentionally.
type RedisDistanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDistanceCache{client: client, ttl: ttl}
}

func pairKey(a, b domain.Location) string {
	return fmt.Sprintf("dist:%.5f,%.5f:%.5f,%.5f", a.Lat, a.Lng, b.Lat, b.Lng)
}

// Get returns the cached result for the pair, reporting a miss for absent
// or unreadable entries.
func (c *RedisDistanceCache) Get(ctx context.Context, a, b domain.Location) (ports.DistanceResult, bool, error) {
	raw, err := c.client.Get(ctx, pairKey(a, b)).Bytes()
	if err == redis.Nil {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("redis get: %w", err)
	}

	var result ports.DistanceResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("decode cached distance: %w", err)
	}
	return result, true, nil
}

// Put stores the result under the pair key with the configured TTL.
func (c *RedisDistanceCache) Put(ctx context.Context, a, b domain.Location, result ports.DistanceResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode distance result: %w", err)
	}
	if err := c.client.Set(ctx, pairKey(a, b), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
