package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedCalculator() *usecase.HealthCalculator {
	return usecase.NewHealthCalculator(0).WithClock(func() time.Time { return fixedNow })
}

func referenceUser() store.User {
	return store.User{
		ID:            "u1",
		Email:         "ref@example.com",
		WeightKg:      70,
		HeightCm:      175,
		Age:           30,
		Gender:        nutrition.GenderMale,
		ActivityLevel: nutrition.Sedentary,
		Goal:          nutrition.Maintain,
	}
}

func TestUpdateHealthMetrics_ExactBMR(t *testing.T) {
	user := referenceUser()
	users := newFakeUsers(user)
	uc := usecase.NewUpdateHealthMetrics(users, fixedCalculator())

	r := uc.Execute(context.Background(), &user)
	require.True(t, result.IsSuccess(r))

	updated := result.GetOrThrow(r)
	require.NotNil(t, updated.HealthMetrics)
	assert.Equal(t, nutrition.CalculateBMR(70, 175, 30, nutrition.GenderMale), updated.HealthMetrics.BMR)
	assert.Equal(t, 1648.75, updated.HealthMetrics.BMR)
	assert.Equal(t, 1978.5, updated.HealthMetrics.TDEE)
	assert.Equal(t, 1979, updated.HealthMetrics.DailyCalorieTarget)
	assert.Equal(t, fixedNow, updated.HealthMetrics.LastUpdated)
	assert.Equal(t, fixedNow, updated.UpdatedAt)

	assert.Nil(t, user.HealthMetrics, "input user must not be mutated")
	assert.Equal(t, 1, users.updates)
}

func TestUpdateHealthMetrics_InfersActivityLevel(t *testing.T) {
	user := referenceUser()
	user.ActivityLevel = ""
	user.ActivityMinutesPerDay = 45
	user.ActivityDaysPerWeek = 7

	uc := usecase.NewUpdateHealthMetrics(newFakeUsers(user), fixedCalculator())
	updated := result.GetOrThrow(uc.Execute(context.Background(), &user))

	assert.Equal(t, nutrition.ModeratelyActive, updated.HealthMetrics.ActivityLevel)
	assert.Equal(t, nutrition.ActivityLevel(""), updated.ActivityLevel, "profile input is kept as entered")
}

func TestUpdateHealthMetrics_RepositoryError(t *testing.T) {
	user := referenceUser()
	users := newFakeUsers(user)
	users.updateErr = errors.New("disk full")

	r := usecase.NewUpdateHealthMetrics(users, fixedCalculator()).Execute(context.Background(), &user)

	require.True(t, result.IsError(r))
	assert.Equal(t, "disk full", result.ErrorMessage(r))
	_, err := result.Get(r)
	assert.ErrorIs(t, err, users.updateErr)
}

func TestUpdateHealthMetrics_NilUser(t *testing.T) {
	r := usecase.NewUpdateHealthMetrics(newFakeUsers(), fixedCalculator()).Execute(context.Background(), nil)
	_, err := result.Get(r)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestCheckHealthMetricsNeedUpdate(t *testing.T) {
	check := usecase.NewCheckHealthMetricsNeedUpdate(fixedCalculator())

	tests := []struct {
		name        string
		lastUpdated *time.Time
		want        bool
	}{
		{"no metrics", nil, true},
		{"fresh", ptr(fixedNow.Add(-24 * time.Hour)), false},
		{"exactly at threshold", ptr(fixedNow.Add(-nutrition.DefaultHealthStaleness)), false},
		{"stale", ptr(fixedNow.Add(-8 * 24 * time.Hour)), true},
		{"zero timestamp", ptr(time.Time{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := referenceUser()
			if tt.lastUpdated != nil {
				user.HealthMetrics = &nutrition.HealthMetrics{LastUpdated: *tt.lastUpdated}
			}
			assert.Equal(t, tt.want, check.Execute(&user))
		})
	}

	assert.False(t, check.Execute(nil))
}

func TestHealthCalculator_CustomStaleness(t *testing.T) {
	calc := usecase.NewHealthCalculator(time.Hour).WithClock(func() time.Time { return fixedNow })
	assert.Equal(t, time.Hour, calc.Staleness())
	assert.True(t, calc.NeedsUpdate(&nutrition.HealthMetrics{LastUpdated: fixedNow.Add(-2 * time.Hour)}))
	assert.False(t, calc.NeedsUpdate(&nutrition.HealthMetrics{LastUpdated: fixedNow.Add(-30 * time.Minute)}))

	assert.Equal(t, nutrition.DefaultHealthStaleness, usecase.NewHealthCalculator(-1).Staleness())
}

func TestHealthCalculator_Formulas(t *testing.T) {
	calc := fixedCalculator()

	assert.InDelta(t, 22.857, calc.BMI(70, 175), 0.001)
	assert.Equal(t, 0.0, calc.BMI(70, 0))
	assert.Equal(t, "normal", calc.BMICategory(calc.BMI(70, 175)))
	assert.Equal(t, 1479, calc.DailyCaloriesTarget(calc.TDEE(calc.BMR(70, 175, 30, nutrition.GenderMale), nutrition.Sedentary), nutrition.LoseWeight))
	assert.Equal(t, 792, calc.MealCalories(1978.5, nutrition.Maintain, nutrition.Lunch))
	assert.Equal(t, nutrition.Sedentary, calc.InferActivityLevel(0, 30))

	u := referenceUser()
	m := calc.Compute(u.Profile())
	assert.Equal(t, fixedNow, m.LastUpdated)
}
