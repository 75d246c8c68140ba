// Package usecase orchestrates repository calls around the nutrition engine.
// Every operation returns a result.Result that callers must match.
package usecase

import (
	"context"
	"time"

	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/store"
)

// UserRepository persists accounts and their health metrics.
type UserRepository interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUser(ctx context.Context, id string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	UpdateUser(ctx context.Context, user *store.User) (*store.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]store.User, error)
}

// MealIntakeRepository persists planned and consumed meal portions.
// GetTotalConsumedCalories returns nil when nothing was consumed that day.
type MealIntakeRepository interface {
	GetMealIntakeByDate(ctx context.Context, userID, date string) ([]store.MealIntake, error)
	GetMealIntake(ctx context.Context, id string) (*store.MealIntake, error)
	SaveMealIntake(ctx context.Context, intake *store.MealIntake) error
	UpdateConsumedStatus(ctx context.Context, id string, isConsumed bool) error
	DeleteMealIntake(ctx context.Context, id string) error
	GetTotalConsumedCalories(ctx context.Context, userID, date string) (*float64, error)
	GetTotalPlannedCalories(ctx context.Context, userID, date string) (float64, error)
}

type MealRepository interface {
	ListMeals(ctx context.Context, category nutrition.MealCategory, limit, offset int) ([]store.Meal, error)
	SearchMeals(ctx context.Context, q string, category nutrition.MealCategory, limit int) ([]store.Meal, error)
	GetMeal(ctx context.Context, id string) (*store.Meal, error)
	UpsertMeals(ctx context.Context, meals []store.Meal) (int, error)
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, mealID string) error
	RemoveFavorite(ctx context.Context, userID, mealID string) error
	ListFavorites(ctx context.Context, userID string) ([]store.Meal, error)
	IsFavorite(ctx context.Context, userID, mealID string) (bool, error)
}

// DailyMenuRepository persists menu assignments. GetMenuItems is inclusive on
// both ends.
type DailyMenuRepository interface {
	SaveMenuItem(ctx context.Context, item *store.DailyMenuItem) error
	DeleteMenuItem(ctx context.Context, userID, id string) error
	GetMenuItems(ctx context.Context, userID, from, to string) ([]store.DailyMenuItem, error)
}

// SessionStore keeps login sessions until their TTL runs out.
type SessionStore interface {
	SaveSession(id, userID string, ttl time.Duration) error
	GetSession(id string) (string, error)
	DeleteSession(id string) error
}

var (
	_ UserRepository       = (*store.Store)(nil)
	_ MealIntakeRepository = (*store.Store)(nil)
	_ MealRepository       = (*store.Store)(nil)
	_ FavoriteRepository   = (*store.Store)(nil)
	_ DailyMenuRepository  = (*store.Store)(nil)
	_ SessionStore         = (*store.Store)(nil)
)
