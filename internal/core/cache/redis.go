package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"recipe-planner/internal/infrastructure/config"
	"recipe-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redis 多個實例共用的快取
type Redis struct {
	client *redis.Client
	config *config.CacheConfig
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis 連線 redis 並確認可用
func NewRedis(ctx context.Context, cfg *config.CacheConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return NewRedisWithClient(client, cfg), nil
}

// NewRedisWithClient 使用既有的 client
func NewRedisWithClient(client *redis.Client, cfg *config.CacheConfig) *Redis {
	return &Redis{client: client, config: cfg}
}

// Get 獲取緩存
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.misses.Add(1)
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	r.hits.Add(1)
	return data, nil
}

// Set 設置緩存
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 本實例的命中統計
func (r *Redis) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": "redis",
		"addr":    r.config.RedisAddr,
		"hits":    r.hits.Load(),
		"misses":  r.misses.Load(),
	}
}

// Close 關閉連線
func (r *Redis) Close() error {
	return r.client.Close()
}
