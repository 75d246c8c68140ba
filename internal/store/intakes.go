package store

import (
	"context"
	"database/sql"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"gorm.io/gorm"
)

// GetMealIntakeByDate lists a user's intake records for one date
func (s *Store) GetMealIntakeByDate(ctx context.Context, userID, date string) ([]MealIntake, error) {
	var intakes []MealIntake
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("category ASC, created_at ASC").
		Find(&intakes).Error
	if err != nil {
		return nil, apperrors.WrapAs(apperrors.ErrIntakeStorage, err)
	}
	return intakes, nil
}

// GetMealIntake retrieves one intake record
func (s *Store) GetMealIntake(ctx context.Context, id string) (*MealIntake, error) {
	var intake MealIntake
	if err := s.db.WithContext(ctx).First(&intake, "id = ?", id).Error; err != nil {
		return nil, notFound(err, apperrors.ErrIntakeNotFound)
	}
	return &intake, nil
}

// SaveMealIntake inserts or replaces an intake record
func (s *Store) SaveMealIntake(ctx context.Context, intake *MealIntake) error {
	if err := ValidateMealIntake(intake); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(intake).Error; err != nil {
		return apperrors.WrapAs(apperrors.ErrIntakeStorage, err)
	}
	return nil
}

// UpdateConsumedStatus flips the consumed flag of one record
func (s *Store) UpdateConsumedStatus(ctx context.Context, id string, isConsumed bool) error {
	res := s.db.WithContext(ctx).Model(&MealIntake{}).Where("id = ?", id).Update("is_consumed", isConsumed)
	if res.Error != nil {
		return apperrors.WrapAs(apperrors.ErrIntakeStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.WrapAs(apperrors.ErrIntakeNotFound, gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *Store) DeleteMealIntake(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&MealIntake{})
	if res.Error != nil {
		return apperrors.WrapAs(apperrors.ErrIntakeStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.WrapAs(apperrors.ErrIntakeNotFound, gorm.ErrRecordNotFound)
	}
	return nil
}

// GetTotalConsumedCalories sums consumed records. It returns nil when the
// user has no consumed record on that date.
func (s *Store) GetTotalConsumedCalories(ctx context.Context, userID, date string) (*float64, error) {
	var total sql.NullFloat64
	err := s.db.WithContext(ctx).Model(&MealIntake{}).
		Select("SUM(calories * portion_size)").
		Where("user_id = ? AND date = ? AND is_consumed = ?", userID, date, true).
		Row().Scan(&total)
	if err != nil {
		return nil, apperrors.WrapAs(apperrors.ErrIntakeStorage, err)
	}
	if !total.Valid {
		return nil, nil
	}
	return &total.Float64, nil
}

// GetTotalPlannedCalories sums every record of the date, consumed or not
func (s *Store) GetTotalPlannedCalories(ctx context.Context, userID, date string) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&MealIntake{}).
		Select("COALESCE(SUM(calories * portion_size), 0)").
		Where("user_id = ? AND date = ?", userID, date).
		Row().Scan(&total)
	if err != nil {
		return 0, apperrors.WrapAs(apperrors.ErrIntakeStorage, err)
	}
	return total, nil
}

// ValidateMealIntake enforces the record invariants
func ValidateMealIntake(m *MealIntake) error {
	switch {
	case m.UserID == "":
		return apperrors.New(apperrors.ErrIntakeInvalid.Code, "user_id is required")
	case m.Date == "":
		return apperrors.New(apperrors.ErrIntakeInvalid.Code, "date is required")
	case !m.Category.Valid():
		return apperrors.New(apperrors.ErrIntakeInvalid.Code, "unknown meal category: "+string(m.Category))
	case m.Calories < 0:
		return apperrors.New(apperrors.ErrIntakeInvalid.Code, "calories must not be negative")
	case m.PortionSize <= 0:
		return apperrors.New(apperrors.ErrIntakeInvalid.Code, "portion size must be positive")
	}
	if _, err := ParseDate(m.Date); err != nil {
		return apperrors.Wrap(err, apperrors.ErrIntakeInvalid.Code, apperrors.ErrIntakeInvalid.Message)
	}
	return nil
}
