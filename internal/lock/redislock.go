// Package lock serialises read-modify-write cycles on a cart slot.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker runs fn while holding an exclusive lock on key.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

var (
	errNoClient   = errors.New("lock: redis client not configured")
	errNoCallback = errors.New("lock: callback not provided")
)

const (
	defaultTTL     = 5 * time.Second
	defaultBackoff = 25 * time.Millisecond
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock taken over by another caller is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis locks a cart slot across processes with SET NX PX plus a token.
type Redis struct {
	R            *redis.Client
	Prefix       string
	RetryBackoff time.Duration
}

// WithLock polls until the lock is free or ctx ends, then runs fn. The lock is
// released when fn returns, error or not.
func (l Redis) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	switch {
	case l.R == nil:
		return errNoClient
	case fn == nil:
		return errNoCallback
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	backoff := l.RetryBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	slot := l.Prefix + key
	token := uuid.NewString()
	if err := l.acquire(ctx, slot, token, ttl, backoff); err != nil {
		return err
	}
	defer func() {
		// Cancellation of ctx must not leave the slot locked until ttl.
		_ = unlockScript.Run(context.WithoutCancel(ctx), l.R, []string{slot}, token).Err()
	}()
	return fn(ctx)
}

func (l Redis) acquire(ctx context.Context, slot, token string, ttl, backoff time.Duration) error {
	ticker := time.NewTicker(backoff)
	defer ticker.Stop()
	for {
		ok, err := l.R.SetNX(ctx, slot, token, ttl).Result()
		if err != nil {
			return fmt.Errorf("lock %s: %w", slot, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
