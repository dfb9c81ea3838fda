package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appLog "sbccweb/internal/log"
)

const keyPrefix = "sbccweb:cache:"

// Redis is a Cache shared between instances through a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redisURL and verifies the connection with PING.
func NewRedis(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if r.ttl <= 0 {
		return nil, false
	}
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			appLog.Error("cache: redis get failed", err, "key", key)
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if r.ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		appLog.Error("cache: redis set failed", err, "key", key)
	}
}

func (r *Redis) Purge(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		appLog.Error("cache: redis scan failed", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		appLog.Error("cache: redis purge failed", err, "keys", len(keys))
	}
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
