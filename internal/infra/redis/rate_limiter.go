package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter caps how many generation jobs a caller may submit per window.
// Fixed-window counters are coarse but cheap, and good enough to keep a
// runaway client from flooding the completion provider.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// SubmitKey buckets generation submissions per caller and entity kind.
func SubmitKey(caller, entity string) string {
	return fmt.Sprintf("rate_limit:generate:%s:%s", caller, entity)
}
