package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.CacheRepository = (*RedisCache)(nil)

// RedisCache implements ports.CacheRepository with JSON values in Redis
type RedisCache struct {
	client *redis.Client
	addr   string
	db     int
}

// ConnectOptions controls the startup retry loop
type ConnectOptions struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConnectOptions retries five times with exponential backoff from two seconds
var DefaultConnectOptions = ConnectOptions{MaxRetries: 5, RetryDelay: 2 * time.Second}

// Connect opens a Redis connection, retrying with exponential backoff
func Connect(ctx context.Context, cfg config.RedisConfig, opts ConnectOptions, log *logger.Logger) (*RedisCache, error) {
	retryDelay := opts.RetryDelay
	var lastErr error

	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		log.Infow("Connecting to Redis", "addr", cfg.GetAddr(), "attempt", attempt, "max_attempts", opts.MaxRetries)

		client := redis.NewClient(&redis.Options{
			Addr:         cfg.GetAddr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 3,
		})

		lastErr = client.Ping(ctx).Err()
		if lastErr == nil {
			log.Infow("Redis connected", "addr", cfg.GetAddr())
			return New(client, cfg), nil
		}
		_ = client.Close()

		log.Warnw("Redis connection failed", "error", lastErr, "attempt", attempt)

		if attempt < opts.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", opts.MaxRetries, lastErr)
}

// New wraps an existing client
func New(client *redis.Client, cfg config.RedisConfig) *RedisCache {
	return &RedisCache{client: client, addr: cfg.GetAddr(), db: cfg.DB}
}

// Set stores value as JSON under key
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get decodes the JSON stored under key into dest. A missing key returns
// ports.ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode cache value %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeletePattern removes every key matching a glob pattern
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetConnectionInfo returns connection information
func (c *RedisCache) GetConnectionInfo() map[string]interface{} {
	return map[string]interface{}{
		"address":  c.addr,
		"database": c.db,
	}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
