package usecase

import (
	"context"
	"strings"

	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
)

const defaultMealPageSize = 50

// MealCatalog serves catalog lookups and per-user favorites.
type MealCatalog struct {
	meals     MealRepository
	favorites FavoriteRepository
}

func NewMealCatalog(meals MealRepository, favorites FavoriteRepository) *MealCatalog {
	return &MealCatalog{meals: meals, favorites: favorites}
}

// Search lists meals matching q, or all meals of category when q is blank.
func (c *MealCatalog) Search(ctx context.Context, q string, category nutrition.MealCategory, limit int) result.Result[[]store.Meal] {
	if limit <= 0 {
		limit = defaultMealPageSize
	}

	var (
		meals []store.Meal
		err   error
	)
	if strings.TrimSpace(q) == "" {
		meals, err = c.meals.ListMeals(ctx, category, limit, 0)
	} else {
		meals, err = c.meals.SearchMeals(ctx, q, category, limit)
	}
	if err != nil {
		return result.Fail[[]store.Meal](err)
	}
	return result.Ok(meals)
}

func (c *MealCatalog) Get(ctx context.Context, id string) result.Result[*store.Meal] {
	meal, err := c.meals.GetMeal(ctx, id)
	if err != nil {
		return result.Fail[*store.Meal](err)
	}
	return result.Ok(meal)
}

// Import upserts meals and returns how many rows changed.
func (c *MealCatalog) Import(ctx context.Context, meals []store.Meal) result.Result[int] {
	n, err := c.meals.UpsertMeals(ctx, meals)
	if err != nil {
		return result.Fail[int](err)
	}
	return result.Ok(n)
}

func (c *MealCatalog) Favorites(ctx context.Context, userID string) result.Result[[]store.Meal] {
	meals, err := c.favorites.ListFavorites(ctx, userID)
	if err != nil {
		return result.Fail[[]store.Meal](err)
	}
	return result.Ok(meals)
}

// SetFavorite adds or removes a favorite and returns the new state.
func (c *MealCatalog) SetFavorite(ctx context.Context, userID, mealID string, favorite bool) result.Result[bool] {
	var err error
	if favorite {
		err = c.favorites.AddFavorite(ctx, userID, mealID)
	} else {
		err = c.favorites.RemoveFavorite(ctx, userID, mealID)
	}
	if err != nil {
		return result.Fail[bool](err)
	}
	return result.Ok(favorite)
}
