package store

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"gorm.io/gorm"
)

// CreateUser inserts a new account. Emails are unique, case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return notFound(err, apperrors.ErrUserNotFound)
	}
	if count > 0 {
		return apperrors.New(apperrors.ErrUserExists.Code, "user already exists: "+user.Email)
	}

	// the count above can race with a concurrent registration
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if uniqueViolation(err) {
			return apperrors.New(apperrors.ErrUserExists.Code, "user already exists: "+user.Email, err)
		}
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to create user")
	}
	return nil
}

func uniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// UpdateUser saves every field of user and returns the stored row. The
// caller's UpdatedAt is kept; a zero one is stamped with the current time.
func (s *Store) UpdateUser(ctx context.Context, user *User) (*User, error) {
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = s.db.NowFunc()
	}
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Select("*").Omit("created_at").Updates(user)
	if res.Error != nil {
		return nil, apperrors.Wrap(res.Error, apperrors.ErrUserUpdate.Code, apperrors.ErrUserUpdate.Message)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.WrapAs(apperrors.ErrUserNotFound, gorm.ErrRecordNotFound)
	}
	return s.GetUser(ctx, user.ID)
}

// ListUsers lists users with pagination
func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).Order("created_at ASC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return users, nil
}
