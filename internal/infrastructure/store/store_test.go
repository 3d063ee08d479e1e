package store

import (
	"context"
	"testing"
	"time"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(shopping.DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newSQLite(t *testing.T) shopping.Store {
	t.Helper()
	s, err := NewSQLStore("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func stores(t *testing.T) map[string]func(t *testing.T) shopping.Store {
	return map[string]func(t *testing.T) shopping.Store{
		"memory": func(t *testing.T) shopping.Store { return NewMemoryStore() },
		"sqlite": newSQLite,
	}
}

func addRecipe(t *testing.T, s shopping.Store, id string, lines ...shopping.IngredientLine) {
	t.Helper()
	err := s.AddRecipe(context.Background(), &shopping.Recipe{
		ID:          id,
		Name:        "recipe " + id,
		Ingredients: lines,
		CreatedAt:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestIngredientsForRange(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			addRecipe(t, s, "pancakes",
				shopping.IngredientLine{Quantity: "1 cup", Name: "flour"},
				shopping.IngredientLine{Quantity: "2", Name: "eggs", Description: "beaten"},
			)
			addRecipe(t, s, "omelette",
				shopping.IngredientLine{Quantity: "3", Name: "eggs"},
			)

			require.NoError(t, s.Schedule(ctx, "pancakes", day("2024-03-04")))
			require.NoError(t, s.Schedule(ctx, "omelette", day("2024-03-04")))
			require.NoError(t, s.Schedule(ctx, "pancakes", day("2024-03-06")))
			require.NoError(t, s.Schedule(ctx, "omelette", day("2024-03-10")))

			lines, err := s.IngredientsForRange(ctx, day("2024-03-04"), day("2024-03-06"))
			require.NoError(t, err)
			assert.Equal(t, []shopping.IngredientLine{
				{Quantity: "3", Name: "eggs"},
				{Quantity: "1 cup", Name: "flour"},
				{Quantity: "2", Name: "eggs", Description: "beaten"},
				{Quantity: "1 cup", Name: "flour"},
				{Quantity: "2", Name: "eggs", Description: "beaten"},
			}, lines)

			lines, err = s.IngredientsForRange(ctx, day("2024-03-07"), day("2024-03-09"))
			require.NoError(t, err)
			assert.Empty(t, lines)
		})
	}
}

func TestScheduleUnknownRecipe(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			err := s.Schedule(context.Background(), "missing", day("2024-03-04"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRecentShoppingLists(t *testing.T) {
	engine := shopping.NewEngine(nil)
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

			for i, id := range []string{"first", "second", "third"} {
				list := &shopping.ShoppingList{
					ID:        id,
					Start:     "2024-03-01",
					End:       "2024-03-07",
					CreatedAt: base.Add(time.Duration(i) * time.Hour),
					Ingredients: engine.Combine([]shopping.IngredientLine{
						{Quantity: "1/2 cup", Name: "sugar"},
						{Quantity: "2 tbsp", Name: "sugar"},
						{Quantity: "2", Name: "lemons"},
					}),
				}
				require.NoError(t, s.SaveShoppingList(ctx, list))
			}

			lists, err := s.RecentShoppingLists(ctx, 2)
			require.NoError(t, err)
			require.Len(t, lists, 2)
			assert.Equal(t, "third", lists[0].ID)
			assert.Equal(t, "second", lists[1].ID)
			assert.True(t, lists[0].CreatedAt.Equal(base.Add(2*time.Hour)))
			assert.Equal(t, "2024-03-01", lists[0].Start)
			assert.Equal(t, "2024-03-07", lists[0].End)

			got := lists[0].Ingredients
			assert.Equal(t, []string{"lemons", "sugar"}, got.Names())
			require.Len(t, got["sugar"].Quantities, 1)
			assert.Equal(t, "5/8 cup", got["sugar"].Quantities[0].String())
			assert.Equal(t, "lemon", got["lemons"].Key)
		})
	}
}

func TestPing(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, open(t).Ping(context.Background()))
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.DatabaseConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.IsType(t, &SQLStore{}, s)
	assert.NoError(t, s.(*SQLStore).Close())

	_, err = Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
