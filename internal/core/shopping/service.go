package shopping

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-planner/internal/core/cache"
	"recipe-planner/internal/core/shopping/naming"
	"recipe-planner/internal/core/shopping/quantity"
	"recipe-planner/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DayLayout 日期格式
const DayLayout = "2006-01-02"

const (
	// DefaultMaxSpanDays 一次查詢最多涵蓋的天數
	DefaultMaxSpanDays = 62
	defaultHistory     = 10
	maxHistory         = 100
	cacheKeyPrefix     = "shopping:list:"
)

var (
	// ErrInvalidRange 日期範圍錯誤
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidRecipe 食譜內容錯誤
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// Recipe 食譜
type Recipe struct {
	ID          string           `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Ingredients []IngredientLine `json:"ingredients" db:"-"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// ShoppingList 購物清單
type ShoppingList struct {
	ID          string    `json:"id,omitempty"`
	Start       string    `json:"start,omitempty"`
	End         string    `json:"end,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Ingredients List      `json:"ingredients"`
}

// Store 食譜、排程與購物清單的儲存
type Store interface {
	// IngredientsForRange 回傳 [start, end] 之間排定的所有食材行，同一食譜排兩次就出現兩次
	IngredientsForRange(ctx context.Context, start, end time.Time) ([]IngredientLine, error)
	SaveShoppingList(ctx context.Context, list *ShoppingList) error
	RecentShoppingLists(ctx context.Context, limit int) ([]ShoppingList, error)
	AddRecipe(ctx context.Context, recipe *Recipe) error
	Schedule(ctx context.Context, recipeID string, day time.Time) error
	Ping(ctx context.Context) error
}

// Cache 合併結果快取
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ParsedIngredient 單行食材的解析結果
type ParsedIngredient struct {
	Line        IngredientLine    `json:"line"`
	Quantity    quantity.Quantity `json:"quantity"`
	Key         string            `json:"key"`
	DisplayName string            `json:"display_name"`
	Category    *string           `json:"category"`
}

// Service 購物清單服務
type Service struct {
	engine  *Engine
	store   Store
	cache   Cache
	maxSpan int
	now     func() time.Time
}

// ServiceOption 服務選項
type ServiceOption func(*Service)

// WithCache 設定快取，nil 代表停用
func WithCache(c Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithMaxSpanDays 設定日期範圍上限
func WithMaxSpanDays(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.maxSpan = days
		}
	}
}

// WithClock 設定時間來源
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService 創建購物清單服務
func NewService(engine *Engine, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		engine:  engine,
		store:   store,
		maxSpan: DefaultMaxSpanDays,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromLines 合併呼叫端直接提供的食材行，結果不寫入歷史
func (s *Service) FromLines(ctx context.Context, lines []IngredientLine) (*ShoppingList, error) {
	start := time.Now()
	key := cacheKey(lines)

	if list, ok := s.cached(ctx, key); ok {
		return &ShoppingList{CreatedAt: s.now().UTC(), Ingredients: list}, nil
	}

	list := s.engine.Combine(lines)
	s.remember(ctx, key, list)

	common.LogInfo("購物清單已合併",
		zap.Int("lines", len(lines)),
		zap.Int("groups", len(list)),
		zap.Duration("耗時", time.Since(start)),
	)
	return &ShoppingList{CreatedAt: s.now().UTC(), Ingredients: list}, nil
}

// ForRange 合併 [start, end] 期間排定的食譜並寫入歷史
func (s *Service) ForRange(ctx context.Context, start, end time.Time) (*ShoppingList, error) {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, end.Format(DayLayout), start.Format(DayLayout))
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.maxSpan {
		return nil, fmt.Errorf("%w: %d days exceeds the limit of %d", ErrInvalidRange, days, s.maxSpan)
	}

	lines, err := s.store.IngredientsForRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load scheduled ingredients: %w", err)
	}

	result, err := s.FromLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	result.ID = uuid.New().String()
	result.Start = start.Format(DayLayout)
	result.End = end.Format(DayLayout)

	if err := s.store.SaveShoppingList(ctx, result); err != nil {
		return nil, fmt.Errorf("save shopping list: %w", err)
	}

	common.LogInfo("購物清單已儲存",
		zap.String("id", result.ID),
		zap.String("start", result.Start),
		zap.String("end", result.End),
		zap.Int("lines", len(lines)),
	)
	return result, nil
}

// History 最近產生的購物清單，新的在前
func (s *Service) History(ctx context.Context, limit int) ([]ShoppingList, error) {
	if limit <= 0 {
		limit = defaultHistory
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	lists, err := s.store.RecentShoppingLists(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load shopping list history: %w", err)
	}
	return lists, nil
}

// AddRecipe 新增食譜並產生 ID
func (s *Service) AddRecipe(ctx context.Context, recipe *Recipe) error {
	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	if len(recipe.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRecipe)
	}
	recipe.ID = uuid.New().String()
	recipe.CreatedAt = s.now().UTC()

	if err := s.store.AddRecipe(ctx, recipe); err != nil {
		return fmt.Errorf("add recipe: %w", err)
	}
	common.LogInfo("食譜已新增",
		zap.String("id", recipe.ID),
		zap.String("name", recipe.Name),
		zap.Int("ingredients", len(recipe.Ingredients)),
	)
	return nil
}

// Schedule 將食譜排入某一天
func (s *Service) Schedule(ctx context.Context, recipeID string, day time.Time) error {
	if strings.TrimSpace(recipeID) == "" {
		return fmt.Errorf("%w: recipe id is required", ErrInvalidRecipe)
	}
	if err := s.store.Schedule(ctx, recipeID, truncateDay(day)); err != nil {
		return fmt.Errorf("schedule recipe: %w", err)
	}
	return nil
}

// ParseIngredient 解析單行食材文字
func (s *Service) ParseIngredient(text string) ParsedIngredient {
	line := ParseLine(text)
	key, display := naming.Normalize(line.Name)
	parsed := ParsedIngredient{
		Line:        line,
		Quantity:    quantity.Parse(line.Quantity),
		Key:         key,
		DisplayName: display,
	}
	if c, ok := s.engine.index.Classify(key); ok {
		parsed.Category = &c
	}
	return parsed
}

// Classify 名稱 → 分類，未分類時為 "unknown"
func (s *Service) Classify(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		key, _ := naming.Normalize(name)
		out[name] = s.engine.index.ClassifyOrUnknown(key)
	}
	return out
}

// Ping 檢查儲存層
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) cached(ctx context.Context, key string) (List, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			common.LogCacheMiss("shopping_list", key)
		} else {
			common.LogWarn("讀取快取失敗", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		common.LogWarn("快取內容無法解析", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	common.LogCacheHit("shopping_list", key)
	return list, true
}

func (s *Service) remember(ctx context.Context, key string, list List) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		common.LogWarn("購物清單序列化失敗", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		common.LogWarn("寫入快取失敗", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey 以食材行內容計算快取鍵
func cacheKey(lines []IngredientLine) string {
	h := sha256.New()
	for _, l := range lines {
		fmt.Fprintf(h, "%q\x1f%q\x1f%q\x1e", l.Quantity, l.Name, l.Description)
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
