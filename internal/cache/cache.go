// Package cache is a read-through JSON cache on redis. A Cache without a
// client passes every call straight to the loader.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillup-go/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewClient connects to redis. An empty address yields a nil client and no error.
func NewClient(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info("Redis address not configured, caching disabled")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	log.Info("Redis connection established", zap.String("addr", cfg.Addr))
	return client, nil
}

func New(client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl, log: log.Named("cache")}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + k
}

// GetOrLoad returns the cached value for key, or calls load on a miss and stores its result.
// Redis failures are logged and fall back to load.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, load func() (T, error)) (T, error) {
	if !c.Enabled() {
		return load()
	}
	full := c.key(key)
	raw, err := c.client.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		var cached T
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			return cached, nil
		}
		c.log.Warn("Discarding undecodable cache entry", zap.String("key", full))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("Cache read failed", zap.String("key", full), zap.Error(err))
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if b, jerr := json.Marshal(value); jerr == nil {
		if serr := c.client.Set(ctx, full, b, c.ttl).Err(); serr != nil {
			c.log.Warn("Cache write failed", zap.String("key", full), zap.Error(serr))
		}
	}
	return value, nil
}

// Invalidate removes the given keys. Errors are logged only.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", zap.Strings("keys", full), zap.Error(err))
	}
}

// AssessmentKey is the cache key of an assessment with its questions.
func AssessmentKey(id uint) string {
	return fmt.Sprintf("assessment:%d", id)
}

// FromConfig builds the assessment cache from configuration.
func FromConfig(client *redis.Client, cfg config.RedisConfig, log *zap.Logger) *Cache {
	return New(client, "skillup", cfg.TTL, log)
}
