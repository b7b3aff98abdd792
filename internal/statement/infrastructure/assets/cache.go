package assets

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"municipal-statements/internal/observability/metrics"
)

const defaultCachePrefix = "statements:asset:"

// RedisCache is a read-through Redis cache in front of another provider.
// Redis failures fall through to the wrapped provider.
type RedisCache struct {
	client *redis.Client
	next   Provider
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisCache wraps next with a cache entry lifetime of ttl. A zero ttl
// keeps entries until evicted.
func NewRedisCache(client *redis.Client, next Provider, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("asset cache: nil redis client")
	}
	if next == nil {
		return nil, errors.New("asset cache: nil provider")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, next: next, ttl: ttl, prefix: defaultCachePrefix, logger: logger}, nil
}

func (c *RedisCache) Asset(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	key := c.prefix + name
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.IncAssetCache(metrics.CacheHit)
		return data, nil
	case errors.Is(err, redis.Nil):
		metrics.IncAssetCache(metrics.CacheMiss)
	default:
		metrics.IncAssetCache(metrics.CacheError)
		c.logger.Warn("asset cache read failed", "asset", name, "error", err)
	}

	data, err = c.next.Asset(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("asset cache write failed", "asset", name, "error", err)
	}
	return data, nil
}

// Invalidate removes the cached copies of names.
func (c *RedisCache) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, c.prefix+name)
	}
	return c.client.Del(ctx, keys...).Err()
}
