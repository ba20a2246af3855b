package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps slots as plain string keys.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed store. A non-positive ttl keeps keys forever.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, ttl: ttl}
}

// Get returns the value stored under key. It reports whether the key existed.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if r == nil || r.client == nil {
		return "", false, ErrNotConfigured
	}
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores value with the configured TTL.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if r == nil || r.client == nil {
		return ErrNotConfigured
	}
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return ErrNotConfigured
	}
	return r.client.Del(ctx, key).Err()
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ErrNotConfigured
	}
	return r.client.Ping(ctx).Err()
}
