package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/salespulse/internal/ratelimit"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitPrefix = "ratelimit:"
)

// RateLimiter is a ratelimit.Store shared by every server instance. Keys
// expire with their window, so no sweeping is needed.
type RateLimiter struct {
	client *Client
}

// NewRateLimiter creates a new Redis-backed rate limit store
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

var _ ratelimit.Store = (*RateLimiter)(nil)

// Hit counts one request for key in the current fixed window
func (r *RateLimiter) Hit(ctx context.Context, key string, max int, window time.Duration) (ratelimit.Result, error) {
	fullKey := rateLimitPrefix + key
	now := time.Now()

	pipe := r.client.rdb.Pipeline()

	incrCmd := pipe.Incr(ctx, fullKey)

	// Window starts with the first request; later requests must not extend it
	pipe.ExpireNX(ctx, fullKey, window)

	ttlCmd := pipe.PTTL(ctx, fullKey)

	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return ratelimit.Result{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := int(incrCmd.Val())
	ttl := ttlCmd.Val()
	if ttl <= 0 {
		ttl = window
	}

	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}

	return ratelimit.Result{
		Allowed:   count <= max,
		Limit:     max,
		Remaining: remaining,
		ResetAt:   now.Add(ttl),
	}, nil
}
