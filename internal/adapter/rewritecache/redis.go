package rewritecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/go-redis/redis/v8"
)

// DefaultKeyPrefix namespaces rewrite entries in a shared Redis.
const DefaultKeyPrefix = "parking-etl:rewrite:"

// Redis is a rewrite cache shared between service instances.
// It implements domain.RewriteCache.
type Redis struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewRedis wraps a Redis client. A zero ttl stores entries without expiry.
func NewRedis(client redis.Cmdable, ttl time.Duration, metrics *observability.Metrics) *Redis {
	return &Redis{client: client, prefix: DefaultKeyPrefix, ttl: ttl, metrics: metrics}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (c *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		observe(c.metrics, "redis", false, nil)
		return "", false, nil
	}
	if err != nil {
		observe(c.metrics, "redis", false, err)
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	observe(c.metrics, "redis", true, nil)
	return val, true, nil
}

func (c *Redis) Put(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
