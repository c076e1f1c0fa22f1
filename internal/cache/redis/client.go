// Package redis implements the shared cache and rate-limiter interfaces on
// go-redis/v9. It backs watch mode, where several scanner processes share
// pair discovery, trade history, and per-exchange request budgets.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultDialTimeout bounds both the initial dial and the startup ping, so a
// misconfigured address fails the scanner fast instead of hanging a watch
// loop that has not produced a tick yet.
const defaultDialTimeout = 5 * time.Second

// ClientConfig holds connection parameters for the shared Redis instance.
// DialTimeout is optional and falls back to defaultDialTimeout.
type ClientConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	MaxRetries  int
	DialTimeout time.Duration
	TLSEnabled  bool
}

// Client wraps a go-redis client behind the handful of operations the cache
// and limiter implementations need.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection with a bounded ping
// before handing the wrapper out. Cache construction happens during wiring,
// so a dead Redis surfaces as a startup error rather than a mid-scan one.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: dialTimeout,
	}

	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying returns the raw *redis.Client for sub-packages that need direct
// access to the driver.
func (c *Client) Underlying() *redis.Client {
	return c.rdb
}
