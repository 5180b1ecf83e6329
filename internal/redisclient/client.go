package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const catalogKey = "catalog:categories"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCatalog returns the cached catalog payload. The second return value is
// false on a cache miss.
func (c *Client) GetCatalog(ctx context.Context) ([]byte, bool, error) {
	payload, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog cache get failed: %w", err)
	}
	return payload, true, nil
}

// SetCatalog caches the catalog payload with a TTL
func (c *Client) SetCatalog(ctx context.Context, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, catalogKey, payload, ttl).Err()
}

// InvalidateCatalog drops the cached catalog, forcing the next read through
// to the database.
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}

// Limiter is a fixed-window rate limiter keyed per caller. The first request
// in a window creates the counter with an expiry; requests beyond the limit
// inside the window are rejected.
type Limiter struct {
	client *Client
	limit  int64
	window time.Duration
}

// NewLimiter creates a rate limiter allowing limit requests per window
func NewLimiter(client *Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: int64(limit), window: window}
}

// Allow reports whether the caller identified by key may proceed
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr failed: %w", err)
	}
	if count == 1 {
		if err := l.client.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}

	return count <= l.limit, nil
}
