package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/pkg/common"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func init() {
	// glebarez/go-sqlite 以 "sqlite" 註冊，sqlx 預設不認得
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id TEXT NOT NULL REFERENCES recipes(id),
		line_no INTEGER NOT NULL,
		quantity TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		PRIMARY KEY (recipe_id, line_no)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule (
		id TEXT PRIMARY KEY,
		recipe_id TEXT NOT NULL REFERENCES recipes(id),
		day TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS schedule_day_idx ON schedule (day)`,
	`CREATE TABLE IF NOT EXISTS shopping_lists (
		id TEXT PRIMARY KEY,
		start_day TEXT NOT NULL,
		end_day TEXT NOT NULL,
		created_at TEXT NOT NULL,
		ingredients TEXT NOT NULL
	)`,
}

// SQLStore 以 postgres 或 sqlite 保存資料
type SQLStore struct {
	db *sqlx.DB
}

type ingredientRow struct {
	Quantity    string `db:"quantity"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

type shoppingListRow struct {
	ID          string `db:"id"`
	StartDay    string `db:"start_day"`
	EndDay      string `db:"end_day"`
	CreatedAt   string `db:"created_at"`
	Ingredients string `db:"ingredients"`
}

// NewSQLStore 連線資料庫並建立資料表
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// 單一連線，":memory:" 才不會每條連線各一份資料庫
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	common.LogInfo("資料庫已連線", zap.String("driver", driver))
	return &SQLStore{db: db}, nil
}

// AddRecipe 新增食譜與其食材行
func (s *SQLStore) AddRecipe(ctx context.Context, recipe *shopping.Recipe) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO recipes (id, name, created_at) VALUES (?, ?, ?)`),
		recipe.ID, recipe.Name, formatTime(recipe.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	insert := tx.Rebind(`INSERT INTO recipe_ingredients (recipe_id, line_no, quantity, name, description) VALUES (?, ?, ?, ?, ?)`)
	for i, line := range recipe.Ingredients {
		if _, err := tx.ExecContext(ctx, insert, recipe.ID, i, line.Quantity, line.Name, line.Description); err != nil {
			return fmt.Errorf("failed to insert ingredient %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipe: %w", err)
	}
	return nil
}

// Schedule 將食譜排入某一天，食譜不存在時回傳 ErrNotFound
func (s *SQLStore) Schedule(ctx context.Context, recipeID string, day time.Time) error {
	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(`SELECT COUNT(*) FROM recipes WHERE id = ?`), recipeID); err != nil {
		return fmt.Errorf("failed to look up recipe: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("recipe %q: %w", recipeID, ErrNotFound)
	}

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO schedule (id, recipe_id, day) VALUES (?, ?, ?)`),
		uuid.New().String(), recipeID, formatDay(day),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule recipe: %w", err)
	}
	return nil
}

// IngredientsForRange 依日期、食譜 ID 排序回傳期間內的食材行
func (s *SQLStore) IngredientsForRange(ctx context.Context, start, end time.Time) ([]shopping.IngredientLine, error) {
	query := s.db.Rebind(`
		SELECT ri.quantity, ri.name, ri.description
		FROM schedule s
		JOIN recipe_ingredients ri ON ri.recipe_id = s.recipe_id
		WHERE s.day >= ? AND s.day <= ?
		ORDER BY s.day, s.recipe_id, s.id, ri.line_no`)

	var rows []ingredientRow
	if err := s.db.SelectContext(ctx, &rows, query, formatDay(start), formatDay(end)); err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}

	lines := make([]shopping.IngredientLine, len(rows))
	for i, r := range rows {
		lines[i] = shopping.IngredientLine{Quantity: r.Quantity, Name: r.Name, Description: r.Description}
	}
	return lines, nil
}

// SaveShoppingList 保存購物清單，食材以 JSON 存放
func (s *SQLStore) SaveShoppingList(ctx context.Context, list *shopping.ShoppingList) error {
	ingredients, err := json.Marshal(list.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO shopping_lists (id, start_day, end_day, created_at, ingredients) VALUES (?, ?, ?, ?, ?)`),
		list.ID, list.Start, list.End, formatTime(list.CreatedAt), string(ingredients),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return nil
}

// RecentShoppingLists 最新的 limit 筆購物清單，新的在前
func (s *SQLStore) RecentShoppingLists(ctx context.Context, limit int) ([]shopping.ShoppingList, error) {
	var rows []shoppingListRow
	query := s.db.Rebind(`
		SELECT id, start_day, end_day, created_at, ingredients
		FROM shopping_lists
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query shopping lists: %w", err)
	}

	lists := make([]shopping.ShoppingList, 0, len(rows))
	for _, r := range rows {
		createdAt, err := parseTime(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("shopping list %s: bad created_at: %w", r.ID, err)
		}
		var ingredients shopping.List
		if err := json.Unmarshal([]byte(r.Ingredients), &ingredients); err != nil {
			return nil, fmt.Errorf("shopping list %s: failed to unmarshal ingredients: %w", r.ID, err)
		}
		lists = append(lists, shopping.ShoppingList{
			ID:          r.ID,
			Start:       r.StartDay,
			End:         r.EndDay,
			CreatedAt:   createdAt,
			Ingredients: ingredients,
		})
	}
	return lists, nil
}

// Ping 檢查資料庫連線
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉資料庫連線
func (s *SQLStore) Close() error {
	return s.db.Close()
}
