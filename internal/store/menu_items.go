package store

import (
	"context"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"gorm.io/gorm"
)

// SaveMenuItem inserts or replaces a menu assignment
func (s *Store) SaveMenuItem(ctx context.Context, item *DailyMenuItem) error {
	if !item.Category.Valid() {
		return apperrors.New(apperrors.ErrMenuItemInvalid.Code, "unknown meal category: "+string(item.Category))
	}
	if item.Calories < 0 {
		return apperrors.New(apperrors.ErrMenuItemInvalid.Code, "calories must not be negative")
	}
	if _, err := ParseDate(item.Date); err != nil {
		return apperrors.Wrap(err, apperrors.ErrMenuItemInvalid.Code, apperrors.ErrMenuItemInvalid.Message)
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to save menu item")
	}
	return nil
}

// DeleteMenuItem removes one of the user's menu items
func (s *Store) DeleteMenuItem(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&DailyMenuItem{})
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.ErrInternal.Code, "failed to delete menu item")
	}
	if res.RowsAffected == 0 {
		return apperrors.WrapAs(apperrors.ErrMenuItemNotFound, gorm.ErrRecordNotFound)
	}
	return nil
}

// GetMenuItems lists items with from <= date <= to
func (s *Store) GetMenuItems(ctx context.Context, userID, from, to string) ([]DailyMenuItem, error) {
	var items []DailyMenuItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to list menu items")
	}
	return items, nil
}
