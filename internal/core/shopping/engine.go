// Package shopping 將多份食譜的食材行合併成分類好的購物清單。
package shopping

import (
	"encoding/json"
	"sort"

	"recipe-planner/internal/core/shopping/category"
	"recipe-planner/internal/core/shopping/naming"
	"recipe-planner/internal/core/shopping/quantity"
)

// IngredientLine 一筆食材輸入
type IngredientLine struct {
	Quantity    string `json:"quantity"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AggregatedIngredient 合併後的食材
type AggregatedIngredient struct {
	Key         string              `json:"-"` // 單數化後的分組鍵
	DisplayName string              `json:"-"`
	Category    *string             `json:"category"`
	Quantities  []quantity.Quantity `json:"quantities"`
}

// CategoryOrUnknown 分類名稱，未分類時為 "unknown"
func (a AggregatedIngredient) CategoryOrUnknown() string {
	if a.Category == nil {
		return category.Unknown
	}
	return *a.Category
}

// List 顯示名稱 → 合併結果
type List map[string]AggregatedIngredient

// UnmarshalJSON 還原顯示名稱與分組鍵
func (l *List) UnmarshalJSON(data []byte) error {
	var raw map[string]AggregatedIngredient
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for name, item := range raw {
		item.DisplayName = name
		item.Key, _ = naming.Normalize(name)
		raw[name] = item
	}
	*l = raw
	return nil
}

// Names 排序後的顯示名稱
func (l List) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByCategory 依分類分組的顯示名稱，各組內依名稱排序
func (l List) ByCategory() map[string][]string {
	out := make(map[string][]string)
	for _, name := range l.Names() {
		c := l[name].CategoryOrUnknown()
		out[c] = append(out[c], name)
	}
	return out
}

// Engine 合併引擎；除了唯讀的分類索引外不保存任何狀態，可並行使用
type Engine struct {
	index *category.Index
}

// NewEngine 建立合併引擎，index 為 nil 時不做分類
func NewEngine(index *category.Index) *Engine {
	return &Engine{index: index}
}

type group struct {
	key        string
	display    string
	quantities []quantity.Quantity
}

// Aggregate 合併食材行，結果依名稱首次出現的順序排列
//
// 同名食材依單位類別分桶：體積與質量各自換算成該桶第一筆數量的單位後相加，
// 無法辨識的單位只與文字完全相同者相加。
func (e *Engine) Aggregate(lines []IngredientLine) []AggregatedIngredient {
	var groups []*group
	byKey := make(map[string]*group)

	for _, line := range lines {
		key, display := naming.Normalize(line.Name)
		q := quantity.Parse(line.Quantity)

		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, display: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		// 複數形式優先，多次出現時以最後一次為準
		if display != key {
			g.display = display
		}
		g.add(q)
	}

	out := make([]AggregatedIngredient, 0, len(groups))
	for _, g := range groups {
		item := AggregatedIngredient{
			Key:         g.key,
			DisplayName: g.display,
			Quantities:  g.quantities,
		}
		if c, ok := e.index.Classify(g.key); ok {
			item.Category = &c
		}
		out = append(out, item)
	}
	return out
}

func (g *group) add(q quantity.Quantity) {
	for i, existing := range g.quantities {
		if sum, ok := existing.Add(q); ok {
			g.quantities[i] = sum
			return
		}
	}
	g.quantities = append(g.quantities, q)
}

// Combine 合併食材行並以顯示名稱為鍵輸出
func (e *Engine) Combine(lines []IngredientLine) List {
	items := e.Aggregate(lines)
	out := make(List, len(items))
	for _, item := range items {
		name := item.DisplayName
		if _, taken := out[name]; taken {
			// 不同的鍵剛好有相同的顯示名稱時，後者以分組鍵輸出
			name = item.Key
			item.DisplayName = name
		}
		out[name] = item
	}
	return out
}
