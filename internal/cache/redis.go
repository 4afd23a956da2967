package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// RedisCache is a JSON key-value store on top of Redis.
type RedisCache struct {
	Client *redis.Client
	log    *zap.Logger
}

func NewRedisCache(addr string, log *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     addr,
			Password: "",
			DB:       0,
		},
	)
	redisCache := &RedisCache{Client: client, log: log}

	return redisCache, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}

// Set stores value as JSON. A zero expiration keeps the key forever.
func (r *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Read is Get for callers that treat the cache as best effort: a missing key,
// a corrupt value or an unreachable server all report false. Corrupt values
// are dropped so the next write starts clean.
func (r *RedisCache) Read(ctx context.Context, key string, dest any) bool {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		r.log.Warn("discarding corrupt cache value", zap.String("key", key), zap.Error(err))
		_ = r.Client.Del(ctx, key).Err()
		return false
	}
	return true
}

// Write is Set that logs instead of failing.
func (r *RedisCache) Write(ctx context.Context, key string, value any, expiration time.Duration) {
	if err := r.Set(ctx, key, value, expiration); err != nil {
		r.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

func (r *RedisCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return r.Client.Expire(ctx, key, expiration).Err()
}
