package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaughan-dsouza/storerate/internal/models"
)

const statsKey = "storerate:dashboard:admin"

// StatsCache holds the admin dashboard counts for a short time.
type StatsCache interface {
	Get(ctx context.Context) (models.AdminStats, bool, error)
	Set(ctx context.Context, stats models.AdminStats) error
}

type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context) (models.AdminStats, bool, error) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.AdminStats{}, false, nil
	}
	if err != nil {
		return models.AdminStats{}, false, fmt.Errorf("stats cache get: %w", err)
	}
	var stats models.AdminStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return models.AdminStats{}, false, fmt.Errorf("stats cache decode: %w", err)
	}
	return stats, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, stats models.AdminStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, statsKey, raw, c.ttl).Err()
}

// Nop never caches. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context) (models.AdminStats, bool, error) {
	return models.AdminStats{}, false, nil
}

func (Nop) Set(context.Context, models.AdminStats) error { return nil }
