// Package cache keeps rendered API responses in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alias1177/numbersff/models"
)

// TTL constants
const (
	WeekResponseTTL     = 6 * time.Hour
	CompletedWeeksTTL   = 1 * time.Hour
	completedWeeksKey   = "numbersff:completed-weeks"
	weekIndexKeyPattern = "numbersff:week:%d:%d:keys"
)

// RedisCache stores JSON response bodies keyed by route and season/week
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a new Redis response cache
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Connect parses a redis:// URL and verifies the server answers
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// WeekKey is the cache key of a week-scoped response
func WeekKey(route string, sw models.SeasonWeek, extra ...string) string {
	key := fmt.Sprintf("numbersff:%s:%d:%d", route, sw.Season, sw.Week)
	for _, e := range extra {
		key += ":" + e
	}
	return key
}

// CompletedWeeksKey is the cache key of the completed weeks listing
func CompletedWeeksKey() string {
	return completedWeeksKey
}

func weekIndexKey(sw models.SeasonWeek) string {
	return fmt.Sprintf(weekIndexKeyPattern, sw.Season, sw.Week)
}

// Get returns the cached body for key. A miss is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// SetWeek stores a week-scoped body and indexes it for invalidation
func (c *RedisCache) SetWeek(ctx context.Context, sw models.SeasonWeek, key string, data []byte) error {
	index := weekIndexKey(sw)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, WeekResponseTTL)
	pipe.SAdd(ctx, index, key)
	pipe.Expire(ctx, index, WeekResponseTTL)

	_, err := pipe.Exec(ctx)
	return err
}

// SetCompletedWeeks stores the completed weeks body under key, normally CompletedWeeksKey
func (c *RedisCache) SetCompletedWeeks(ctx context.Context, key string, data []byte) error {
	return c.client.Set(ctx, key, data, CompletedWeeksTTL).Err()
}

// InvalidateWeek drops every response cached for sw and the completed weeks listing
func (c *RedisCache) InvalidateWeek(ctx context.Context, sw models.SeasonWeek) error {
	index := weekIndexKey(sw)

	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read cache index: %w", err)
	}

	keys = append(keys, index, completedWeeksKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cached responses: %w", err)
	}
	return nil
}
