package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/openlitera/pulse/pkg/observability"
)

// Client wraps the Redis connection shared by every analytics structure.
// A single address yields a standalone client; multiple addresses yield a
// cluster client that routes writes to primaries and, when configured,
// reads to replicas. The wrapper is safe for concurrent use.
type Client struct {
	rdb    redis.UniversalClient
	config Config
	logger *observability.Logger
}

// NewClient connects to Redis and verifies connectivity with a ping.
func NewClient(config Config, logger *observability.Logger) (*Client, error) {
	if len(config.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses configured")
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	opts := &redis.UniversalOptions{
		Addrs:           config.Addrs,
		Password:        config.Password,
		DB:              config.DB,
		PoolSize:        config.PoolSize,
		MaxRedirects:    config.MaxRedirects,
		MinRetryBackoff: config.MinRetryBackoff,
		MaxRetryBackoff: config.MaxRetryBackoff,
		DialTimeout:     config.DialTimeout,
		ReadTimeout:     config.ReadTimeout,
		WriteTimeout:    config.WriteTimeout,
	}
	if config.ReadFromReplicas {
		opts.ReadOnly = true
		opts.RouteRandomly = true
	}

	rdb := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	mode := "standalone"
	if len(config.Addrs) > 1 {
		mode = "cluster"
	}
	logger.WithFields(map[string]interface{}{
		"mode":  mode,
		"nodes": len(config.Addrs),
	}).Info("connected to redis")

	return &Client{
		rdb:    rdb,
		config: config,
		logger: logger,
	}, nil
}

// Redis returns the underlying client for direct command access.
func (c *Client) Redis() redis.UniversalClient {
	return c.rdb
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.config
}

// Ping checks Redis connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// TxPipelined runs fn as one transactional batch. All queued commands are
// sent on a single round trip; atomicity holds per node but not across
// cluster shards.
func (c *Client) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) error {
	_, err := c.rdb.TxPipelined(ctx, fn)
	return err
}

// PoolStats returns connection pool statistics
func (c *Client) PoolStats() *redis.PoolStats {
	return c.rdb.PoolStats()
}

// Expire sets a key's expiration
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.rdb.Expire(ctx, key, expiration).Err()
}

// TTLOf returns the remaining time to live of a key
func (c *Client) TTLOf(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, key).Result()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	c.logger.Info("closing redis connection")
	return c.rdb.Close()
}
