package store

import (
	"context"
	"strings"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"gorm.io/gorm/clause"
)

// ListMeals lists catalog meals, optionally restricted to one category
func (s *Store) ListMeals(ctx context.Context, category nutrition.MealCategory, limit, offset int) ([]Meal, error) {
	query := s.db.WithContext(ctx).Model(&Meal{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var meals []Meal
	if err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&meals).Error; err != nil {
		return nil, notFound(err, apperrors.ErrMealNotFound)
	}
	return meals, nil
}

// SearchMeals matches name or description (simple LIKE search)
func (s *Store) SearchMeals(ctx context.Context, q string, category nutrition.MealCategory, limit int) ([]Meal, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	query := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var meals []Meal
	if err := query.Order("name ASC").Limit(limit).Find(&meals).Error; err != nil {
		return nil, notFound(err, apperrors.ErrMealNotFound)
	}
	return meals, nil
}

// GetMeal retrieves a meal by ID
func (s *Store) GetMeal(ctx context.Context, id string) (*Meal, error) {
	var meal Meal
	if err := s.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, notFound(err, apperrors.ErrMealNotFound)
	}
	return &meal, nil
}

// UpsertMeals inserts meals or overwrites existing ones with the same ID
func (s *Store) UpsertMeals(ctx context.Context, meals []Meal) (int, error) {
	if len(meals) == 0 {
		return 0, nil
	}
	for i := range meals {
		if err := ValidateMeal(&meals[i]); err != nil {
			return 0, err
		}
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&meals)
	if res.Error != nil {
		return 0, apperrors.Wrap(res.Error, apperrors.ErrInternal.Code, "failed to upsert meals")
	}
	return int(res.RowsAffected), nil
}

// ValidateMeal enforces non-negative nutrition values
func ValidateMeal(m *Meal) error {
	if strings.TrimSpace(m.Name) == "" {
		return apperrors.New(apperrors.ErrMealInvalid.Code, "meal name is required")
	}
	if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return apperrors.New(apperrors.ErrMealInvalid.Code, "nutrition values must not be negative: "+m.Name)
	}
	return nil
}

// ==================== Favorites ====================

// AddFavorite marks a meal as a favorite; adding twice is a no-op
func (s *Store) AddFavorite(ctx context.Context, userID, mealID string) error {
	if _, err := s.GetMeal(ctx, mealID); err != nil {
		return err
	}
	fav := &Favorite{UserID: userID, MealID: mealID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to add favorite")
	}
	return nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, mealID string) error {
	err := s.db.WithContext(ctx).Where("user_id = ? AND meal_id = ?", userID, mealID).Delete(&Favorite{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to remove favorite")
	}
	return nil
}

// ListFavorites returns the favorite meals of a user, newest first
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]Meal, error) {
	var meals []Meal
	err := s.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.meal_id = meals.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrMealNotFound)
	}
	return meals, nil
}

func (s *Store) IsFavorite(ctx context.Context, userID, mealID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ? AND meal_id = ?", userID, mealID).
		Count(&count).Error
	if err != nil {
		return false, notFound(err, apperrors.ErrMealNotFound)
	}
	return count > 0, nil
}
