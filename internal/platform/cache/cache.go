// Package cache wraps Redis for dashboard aggregates and contest
// leaderboards. The cache is optional: a nil *Cache degrades every
// operation to a miss so the server runs without Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or the cache is disabled.
var ErrMiss = errors.New("cache miss")

type Cache struct {
	client *redis.Client
}

// New connects to Redis at the given URL. An empty URL disables the
// cache.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// GetJSON unmarshals the cached value at key into dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) error {
	if c == nil {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON stores value at key with the given TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// Invalidate removes keys, ignoring absent ones.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Leaderboard operations back the contest ranking on a sorted set.

// LeaderboardAdd records a participant's score.
func (c *Cache) LeaderboardAdd(ctx context.Context, board, member string, score float64) error {
	if c == nil {
		return nil
	}
	return c.client.ZAdd(ctx, board, redis.Z{Score: score, Member: member}).Err()
}

// LeaderboardEntry is a ranked participant.
type LeaderboardEntry struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// LeaderboardTop returns the highest-scoring members, best first.
func (c *Cache) LeaderboardTop(ctx context.Context, board string, n int64) ([]LeaderboardEntry, error) {
	if c == nil {
		return nil, ErrMiss
	}
	zs, err := c.client.ZRevRangeWithScores(ctx, board, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top %s: %w", board, err)
	}
	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, LeaderboardEntry{Member: member, Score: z.Score})
	}
	return entries, nil
}
