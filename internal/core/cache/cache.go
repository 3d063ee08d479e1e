// Package cache 合併結果的快取：行程內記憶體或 redis。
package cache

import (
	"context"
	"errors"
	"fmt"

	"recipe-planner/internal/infrastructure/config"
	"recipe-planner/internal/pkg/common"
)

// ErrMiss 快取未命中
var ErrMiss = errors.New("cache miss")

// Cache 快取介面
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定建立快取；停用時回傳 nil
func New(ctx context.Context, cfg *config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	switch cfg.Backend {
	case "redis":
		return NewRedis(ctx, cfg)
	case "memory", "":
		return NewManager(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
