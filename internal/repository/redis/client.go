package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/salespulse/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout    = 5 * time.Second
	connectTimeout = 5 * time.Second
)

// Client holds the connection the shared rate-limit counters live on. It is
// only created when rate_limit.store is "redis", and it doubles as the
// readiness check for that store.
type Client struct {
	rdb *redis.Client
}

// NewClient connects and pings within connectTimeout. An unreachable server
// is an error.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping satisfies the readiness check
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
