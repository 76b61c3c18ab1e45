package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"opsdesk/internal/platform/config"
)

// Client holds the acknowledgement store's connection. It is a single node
// when configured by URL and a cluster when several addresses are listed.
type Client struct {
	redis.UniversalClient
}

// New connects and pings. It returns nil, nil when Redis is not configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := universalOptions(cfg)
	if err != nil || opts == nil {
		return nil, err
	}

	client := redis.NewUniversalClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{UniversalClient: client}, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func universalOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	switch {
	case len(cfg.Addrs) > 0:
		opts.Addrs = cfg.Addrs
		opts.Password = cfg.Password
	case cfg.URL != "":
		single, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis URL: %w", err)
		}
		opts.Addrs = []string{single.Addr}
		opts.Username = single.Username
		opts.Password = single.Password
		opts.DB = single.DB
		opts.TLSConfig = single.TLSConfig
	default:
		return nil, nil
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}
