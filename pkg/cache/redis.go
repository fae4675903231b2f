package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisIndex is a Redis-backed index for shared deployments where several
// workers export against the same artifact store.
type RedisIndex struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig configures a RedisIndex.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TTL for entries; zero means entries never expire. Verification
	// still guards against artifacts deleted out from under the index.
	TTL time.Duration
}

// NewRedisIndex connects to Redis and verifies the connection.
func NewRedisIndex(ctx context.Context, cfg RedisConfig) (*RedisIndex, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisIndex{client: client, ttl: cfg.TTL}, nil
}

// Get retrieves the entry for key. Corrupt values are treated as a miss
// and removed.
func (x *RedisIndex) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := x.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = x.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores the entry for key.
func (x *RedisIndex) Put(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return x.client.Set(ctx, key, data, x.ttl).Err()
}

// Invalidate removes the entry for key.
func (x *RedisIndex) Invalidate(ctx context.Context, key string) error {
	return x.client.Del(ctx, key).Err()
}

// Close releases the Redis connection.
func (x *RedisIndex) Close() error {
	return x.client.Close()
}

// Ensure RedisIndex implements Index.
var _ Index = (*RedisIndex)(nil)
