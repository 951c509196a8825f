package redis

import (
	"context"
	cacherepo "docshare/internal/repositories/cache"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pkg = "redis/"

const scanBatch = 256

type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client adapts go-redis to cacherepo.Cache. A missing key is not an error:
// it reads as the zero value.
type Client struct {
	rdb *redis.Client
}

type result[T any] struct {
	val T
	err error
}

func (r result[T]) Err() error {
	return r.err
}

func (r result[T]) Result() (T, error) {
	return r.val, r.err
}

func settle[T any](val T, err error) result[T] {
	if errors.Is(err, redis.Nil) {
		var zero T
		return result[T]{val: zero}
	}
	return result[T]{val: val, err: err}
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	op := pkg + "New"

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	rdb.AddHook(metricsHook{})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, cfg.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Get(ctx context.Context, key string) cacherepo.CacheResponse[string] {
	return settle(c.rdb.Get(ctx, key).Result())
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) cacherepo.CacheResponse[string] {
	return settle(c.rdb.Set(ctx, key, value, expiration).Result())
}

func (c *Client) Del(ctx context.Context, keys ...string) cacherepo.CacheResponse[int64] {
	if len(keys) == 0 {
		return result[int64]{}
	}
	return settle(c.rdb.Del(ctx, keys...).Result())
}

// Scan walks the whole keyspace with SCAN MATCH and returns every matching key.
func (c *Client) Scan(ctx context.Context, match string) cacherepo.CacheResponse[[]string] {
	var keys []string

	iter := c.rdb.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	return result[[]string]{val: keys, err: iter.Err()}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
