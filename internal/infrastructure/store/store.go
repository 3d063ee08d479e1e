// Package store 食譜、排程與購物清單歷史的儲存實作。
package store

import (
	"errors"
	"fmt"
	"time"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/config"
)

// ErrNotFound 資料不存在
var ErrNotFound = errors.New("not found")

// timeLayout 固定寬度的 UTC 時間，字串排序即時間排序
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Open 依設定開啟儲存
func Open(cfg config.DatabaseConfig) (shopping.Store, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryStore(), nil
	case "postgres", "sqlite":
		return NewSQLStore(cfg.Driver, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func formatDay(t time.Time) string {
	return t.UTC().Format(shopping.DayLayout)
}
