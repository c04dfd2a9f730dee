// Package ratelimit counts failed logins in Redis so that every server instance shares the limit.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisThrottle blocks a key after max failures within a fixed window.
// The window starts at the first failure and is not extended by later ones.
type RedisThrottle struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisThrottle connects to redisURL and verifies the connection.
func NewRedisThrottle(redisURL string, max int, window time.Duration) (*RedisThrottle, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisThrottleWithClient(client, max, window), nil
}

// NewRedisThrottleWithClient creates a throttle from an existing Redis client.
func NewRedisThrottleWithClient(client *redis.Client, max int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{
		client: client,
		prefix: "login:",
		max:    int64(max),
		window: window,
	}
}

func (t *RedisThrottle) key(name string) string {
	return t.prefix + name
}

// Blocked reports whether key has reached the failure limit.
func (t *RedisThrottle) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(key)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read failure count: %w", err)
	}
	return n >= t.max, nil
}

// RecordFailure counts one failed attempt for key.
func (t *RedisThrottle) RecordFailure(ctx context.Context, key string) error {
	k := t.key(key)
	n, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("count failure: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, k, t.window).Err(); err != nil {
			return fmt.Errorf("set failure window: %w", err)
		}
	}
	return nil
}

// Reset clears the failures recorded for key.
func (t *RedisThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.key(key)).Err(); err != nil {
		return fmt.Errorf("reset failures: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (t *RedisThrottle) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (t *RedisThrottle) Close() error {
	return t.client.Close()
}
