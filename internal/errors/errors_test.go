package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAppError_Format(t *testing.T) {
	assert.Equal(t, "[MEAL_002] calories must not be negative",
		New(ErrMealInvalid.Code, "calories must not be negative").Error())

	err := Wrap(gorm.ErrRecordNotFound, ErrUserNotFound.Code, "user not found")
	assert.Equal(t, "[USER_001] user not found: record not found", err.Error())
	assert.Same(t, gorm.ErrRecordNotFound, err.Unwrap())
}

func TestAppError_IsMatchesOnCode(t *testing.T) {
	err := New(ErrIntakeInvalid.Code, "portion size must be positive")

	assert.ErrorIs(t, err, ErrIntakeInvalid)
	assert.ErrorIs(t, fmt.Errorf("save intake: %w", err), ErrIntakeInvalid)
	assert.NotErrorIs(t, err, ErrMealInvalid)
	assert.False(t, err.Is(stderrors.New("[INTAKE_002] portion size must be positive")))
}

func TestWrapAs(t *testing.T) {
	err := WrapAs(ErrIntakeNotFound, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, err, ErrIntakeNotFound)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, ErrIntakeNotFound.Message, err.Message)
}

func TestGetCodeAndIsAppError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  string
		isApp bool
	}{
		{"sentinel", ErrUnauthorized, "AUTH_001", true},
		{"fmt wrapped", fmt.Errorf("login: %w", ErrInvalidCredentials), "AUTH_003", true},
		{"plain", stderrors.New("disk full"), "UNKNOWN", false},
		{"nil", nil, "UNKNOWN", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.isApp, IsAppError(tt.err))
		})
	}
}

func TestSentinelCodesAreUnique(t *testing.T) {
	sentinels := []*AppError{
		ErrConfigNotFound, ErrConfigInvalid,
		ErrUserNotFound, ErrUserExists, ErrProfileInvalid, ErrUserUpdate,
		ErrMealNotFound, ErrMealInvalid,
		ErrIntakeNotFound, ErrIntakeInvalid, ErrIntakeStorage,
		ErrMenuItemNotFound, ErrMenuItemInvalid,
		ErrRemoteUnavailable, ErrRemoteRejected,
		ErrUnauthorized, ErrForbidden, ErrInvalidCredentials, ErrSessionExpired,
		ErrNotFound, ErrBadRequest, ErrInternal,
	}

	seen := make(map[string]bool, len(sentinels))
	for _, s := range sentinels {
		require.NotEmpty(t, s.Message, s.Code)
		assert.False(t, seen[s.Code], "duplicate code %s", s.Code)
		seen[s.Code] = true
	}
}
