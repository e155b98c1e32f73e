package redis

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"listq"
	"listq/common"
)

// client implements listq.CacheClient using Redis, for deployments that
// share one list cache across processes. The counters field tracks operation
// statistics for monitoring (thread-safe).
type client struct {
	redisClient       *redis.Client  // Underlying Redis client
	mu                sync.Mutex     // Protects counters map
	counters          map[string]int // Operation counters for stats (e.g., "Get", "GetMiss")
	createdInternally bool           // Indicates whether redisClient was created by this struct
}

// Ensure client implements listq.CacheClient and io.Closer.
var (
	_ listq.CacheClient = (*client)(nil)
	_ io.Closer         = (*client)(nil)
)

func (c *client) incrementCounter(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counters == nil {
		c.counters = make(map[string]int)
	}
	c.counters[name]++
}

// Options holds configuration for the Redis client.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Close implements io.Closer. Only closes redisClient if it was created
// internally.
func (c *client) Close() error {
	if c.createdInternally && c.redisClient != nil {
		return c.redisClient.Close()
	}
	return nil
}

// NewClient creates a new Redis cache client wrapper. If redisCli is not
// nil, it is used directly; otherwise opts is used to create a new client.
func NewClient(redisCli *redis.Client, opts *Options) (listq.CacheClient, error) {
	var rdb *redis.Client
	var createdInternally bool

	if redisCli != nil {
		rdb = redisCli
	} else {
		if opts == nil {
			opts = &Options{}
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
		createdInternally = true

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
	}

	return &client{redisClient: rdb, counters: make(map[string]int), createdInternally: createdInternally}, nil
}

// Get retrieves a raw cached body from Redis.
func (c *client) Get(ctx context.Context, key string) (string, error) {
	c.incrementCounter("Get")
	val, err := c.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		c.incrementCounter("GetMiss")
		return "", common.ErrNotFound
	} else if err != nil {
		c.incrementCounter("GetError")
		return "", fmt.Errorf("redis Get error for key '%s': %w", key, err)
	}
	c.incrementCounter("GetHit")
	return val, nil
}

// Set stores a raw cached body in Redis.
func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.incrementCounter("Set")
	if err := c.redisClient.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("redis Set error for key '%s': %w", key, err)
	}
	return nil
}

// Delete removes a key from Redis.
func (c *client) Delete(ctx context.Context, key string) error {
	c.incrementCounter("Delete")
	if err := c.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis Del error for key '%s': %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix, scanning in batches
// so large caches do not block the server the way KEYS would.
func (c *client) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.incrementCounter("DeleteByPrefix")
	var cursor uint64
	for {
		keys, next, err := c.redisClient.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis Scan error for prefix '%s': %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis Del error for prefix '%s': %w", prefix, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// GetCacheStats returns a snapshot of the operation counters.
func (c *client) GetCacheStats(ctx context.Context) listq.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := listq.CacheStats{Counters: make(map[string]int, len(c.counters))}
	for k, v := range c.counters {
		stats.Counters[k] = v
	}
	return stats
}
