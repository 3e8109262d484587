package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ergosit/posture-auth/pkg/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitResult describes the state of a key after a request was counted.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts requests per key over a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error)
}

// RedisRateLimiter implements a sliding window log shared by all instances.
type RedisRateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

var _ RateLimiter = (*RedisRateLimiter)(nil)

// NewRedisRateLimiter creates a new rate limiter
func NewRedisRateLimiter(redis *database.Redis) *RedisRateLimiter {
	return &RedisRateLimiter{redis: redis, now: time.Now}
}

// Allow records the request when it fits into the window
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	now := r.now()
	windowStart := now.Add(-window)
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	// Remove entries older than the window
	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli())).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(limit) {
		result := &RateLimitResult{Allowed: false, RetryAfter: window}
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			oldestTime := time.UnixMilli(int64(oldest[0].Score))
			result.RetryAfter = window - now.Sub(oldestTime)
		}
		return result, nil
	}

	pipe := r.redis.Client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.New().String(),
	})
	pipe.Expire(ctx, redisKey, window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}

	return &RateLimitResult{Allowed: true, Remaining: limit - int(count) - 1}, nil
}
