// Package cache provides the analysis response cache.  The Redis-backed
// implementation is the production path; an in-memory implementation covers
// deployments that run without Redis and most of the test suite.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/venturesonar/venturesonar/internal/config"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
	"github.com/venturesonar/venturesonar/pkg/errors"
)

// Client wraps a redis client with close tracking so commands issued after
// Close fail cleanly instead of hitting a dead connection pool.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger
	closed chan struct{}
}

// NewClient connects to Redis using the given configuration and verifies the
// connection with a ping before returning.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	client := &Client{
		rdb:    rdb,
		logger: log,
		closed: make(chan struct{}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis connection failed")
	}

	log.Info("redis client connected", logging.String("addr", cfg.Addr))
	return client, nil
}

// NewClientFromRedis wraps an existing redis client.  Used by tests that
// provision Redis themselves.
func NewClientFromRedis(rdb redis.UniversalClient, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, logger: log, closed: make(chan struct{})}
}

func (c *Client) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Close releases the connection pool.  Safe to call more than once.
func (c *Client) Close() error {
	if c.isClosed() {
		return nil
	}
	close(c.closed)
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("failed to close redis client", logging.Err(err))
		return err
	}
	c.logger.Info("redis client closed")
	return nil
}

// Ping checks connectivity.  Part of the service health check.
func (c *Client) Ping(ctx context.Context) error {
	if c.isClosed() {
		return errors.New(errors.ErrCodeInternal, "redis client is closed")
	}
	return c.rdb.Ping(ctx).Err()
}
