package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"recipe-planner/internal/core/shopping"
)

type scheduled struct {
	recipeID string
	day      time.Time
}

// MemoryStore 行程內儲存，重啟後資料消失
type MemoryStore struct {
	mu       sync.RWMutex
	recipes  map[string]shopping.Recipe
	schedule []scheduled
	lists    []shopping.ShoppingList
}

// NewMemoryStore 建立空的記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recipes: make(map[string]shopping.Recipe)}
}

// AddRecipe 新增食譜
func (m *MemoryStore) AddRecipe(ctx context.Context, recipe *shopping.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.recipes[recipe.ID]; exists {
		return fmt.Errorf("recipe %q already exists", recipe.ID)
	}
	r := *recipe
	r.Ingredients = append([]shopping.IngredientLine(nil), recipe.Ingredients...)
	m.recipes[r.ID] = r
	return nil
}

// Schedule 將食譜排入某一天
func (m *MemoryStore) Schedule(ctx context.Context, recipeID string, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.recipes[recipeID]; !exists {
		return fmt.Errorf("recipe %q: %w", recipeID, ErrNotFound)
	}
	m.schedule = append(m.schedule, scheduled{recipeID: recipeID, day: day.UTC()})
	return nil
}

// IngredientsForRange 依日期、食譜 ID 排序回傳期間內的食材行
func (m *MemoryStore) IngredientsForRange(ctx context.Context, start, end time.Time) ([]shopping.IngredientLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to := formatDay(start), formatDay(end)
	var hits []scheduled
	for _, s := range m.schedule {
		if day := formatDay(s.day); day >= from && day <= to {
			hits = append(hits, s)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if !hits[i].day.Equal(hits[j].day) {
			return hits[i].day.Before(hits[j].day)
		}
		return hits[i].recipeID < hits[j].recipeID
	})

	var lines []shopping.IngredientLine
	for _, s := range hits {
		lines = append(lines, m.recipes[s.recipeID].Ingredients...)
	}
	return lines, nil
}

// SaveShoppingList 保存購物清單
func (m *MemoryStore) SaveShoppingList(ctx context.Context, list *shopping.ShoppingList) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists = append(m.lists, *list)
	return nil
}

// RecentShoppingLists 最新的 limit 筆購物清單，新的在前
func (m *MemoryStore) RecentShoppingLists(ctx context.Context, limit int) ([]shopping.ShoppingList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]shopping.ShoppingList, 0, limit)
	for i := len(m.lists) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.lists[i])
	}
	return out, nil
}

// Ping 記憶體儲存永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
