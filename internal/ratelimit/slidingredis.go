// Package ratelimit throttles cart clicks with a sliding window kept in Redis.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest event in the window expires.
	ResetAt time.Time
}

// Limiter records events in a Redis sorted set per key, scored by time.
// A nil client disables limiting.
type Limiter struct {
	Client *redis.Client
	Prefix string
	now    func() time.Time
}

// Allow records one event for key and reports whether it fits in the last
// window. Rejected events still count, so hammering keeps the key throttled.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	now := time.Now()
	if l.now != nil {
		now = l.now()
	}
	if l.Client == nil || limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Limit: limit, Remaining: max(limit, 0), ResetAt: now.Add(window)}, nil
	}

	redisKey := l.Prefix + key
	nowScore := float64(now.UnixNano())
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: nowScore, Member: uuid.NewString()})
	count := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.PExpire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Limit: limit, ResetAt: now.Add(window)}, err
	}

	resetAt := now.Add(window)
	if first := oldest.Val(); len(first) > 0 {
		resetAt = time.Unix(0, int64(first[0].Score)).Add(window)
	}
	current := int(count.Val())
	return Decision{
		Allowed:   current <= limit,
		Limit:     limit,
		Remaining: max(limit-current, 0),
		ResetAt:   resetAt,
	}, nil
}
