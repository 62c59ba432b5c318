package redis

import (
	"context"
	"time"

	"edu-platform/internal/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient is the slice of redis this service actually touches: GET/SET/DEL
// for the package read-through cache, INCR/EXPIRE for the redemption rate
// limiter. Tests swap in counters backed by a map.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Close() error
}

type client struct {
	cli *redis.Client
}

var _ RedisClient = (*client)(nil)

// NewClient connects and pings once so a bad address fails at startup, not on
// the first redemption.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &client{cli: c}, nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.cli.Set(ctx, key, value, ttl).Err()
}

func (c *client) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *client) Incr(ctx context.Context, key string) (int64, error) {
	return c.cli.Incr(ctx, key).Result()
}

func (c *client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.cli.Expire(ctx, key, ttl).Err()
}

func (c *client) Close() error { return c.cli.Close() }
