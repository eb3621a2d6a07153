package storage

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/config"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

type Client struct {
	*redis.Client
}

func NewClient(cfg config.RedisConf) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: dialTimeout,
		}),
	}
}

// Wrap adapts an existing go-redis client, e.g. one from redismock.
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("storage.redis.HealthCheck: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
