package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/giftwell/backend/repository"
)

type rateLimiter struct {
	client *redislib.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a fixed-window counter limiter shared across all
// service instances pointed at the same Redis.
func NewRateLimiter(client *redislib.Client, limit int, window time.Duration) repository.RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{
		client: client,
		prefix: "ratelimit:",
		limit:  int64(limit),
		window: window,
	}
}

func (r *rateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := fmt.Sprintf("%s%s:%d", r.prefix, key, time.Now().Unix()/int64(r.window.Seconds()))

	count, err := r.client.Incr(ctx, bucket).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First hit in this window owns setting the expiry.
		if err := r.client.Expire(ctx, bucket, r.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= r.limit, nil
}
