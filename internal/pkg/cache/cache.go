package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notevault/notevault/internal/pkg/config"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the connection to the redis cache server. A failed
// ping is logged, not fatal: the app degrades to uncached reads.
func SetupCache(cfg config.CacheConfig) {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: "",
		DB:       0,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to cache: %v", err)
	} else {
		log.Printf("Successfully connected to cache: %s", pong)
	}
}

// SetClient swaps the redis client (tests wire a miniredis-backed client).
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// ErrUnavailable is returned when no cache connection has been established.
var ErrUnavailable = errors.New("cache not available")

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return ErrUnavailable
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	if client == nil {
		return "", ErrUnavailable
	}
	return client.Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	if client == nil {
		return ErrUnavailable
	}
	return client.Del(ctx, key).Err()
}
