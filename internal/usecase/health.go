package usecase

import (
	"context"
	"time"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
)

// HealthCalculator exposes the nutrition formulas together with the
// configured staleness threshold and a clock.
type HealthCalculator struct {
	staleness time.Duration
	now       func() time.Time
}

// NewHealthCalculator falls back to nutrition.DefaultHealthStaleness for a
// non-positive threshold.
func NewHealthCalculator(staleness time.Duration) *HealthCalculator {
	if staleness <= 0 {
		staleness = nutrition.DefaultHealthStaleness
	}
	return &HealthCalculator{staleness: staleness, now: time.Now}
}

// WithClock returns a copy reading the time from now.
func (h *HealthCalculator) WithClock(now func() time.Time) *HealthCalculator {
	c := *h
	c.now = now
	return &c
}

func (h *HealthCalculator) Now() time.Time           { return h.now() }
func (h *HealthCalculator) Staleness() time.Duration { return h.staleness }

func (h *HealthCalculator) BMI(weightKg, heightCm float64) float64 {
	return nutrition.CalculateBMI(weightKg, heightCm)
}

func (h *HealthCalculator) BMR(weightKg, heightCm float64, age int, gender nutrition.Gender) float64 {
	return nutrition.CalculateBMR(weightKg, heightCm, age, gender)
}

func (h *HealthCalculator) TDEE(bmr float64, level nutrition.ActivityLevel) float64 {
	return nutrition.CalculateTDEE(bmr, level)
}

func (h *HealthCalculator) DailyCaloriesTarget(tdee float64, goal nutrition.Goal) int {
	return nutrition.CalculateDailyCaloriesTarget(tdee, goal)
}

func (h *HealthCalculator) MealCalories(tdee float64, goal nutrition.Goal, category nutrition.MealCategory) int {
	return nutrition.CalculateMealCalories(tdee, goal, category)
}

func (h *HealthCalculator) InferActivityLevel(minutesPerDay, age int) nutrition.ActivityLevel {
	return nutrition.InferActivityLevel(minutesPerDay, age)
}

func (h *HealthCalculator) BMICategory(bmi float64) string {
	return nutrition.BMICategory(bmi)
}

// Compute derives metrics from p, stamped with the calculator's clock.
func (h *HealthCalculator) Compute(p nutrition.Profile) nutrition.HealthMetrics {
	return nutrition.Compute(p, h.now())
}

// NeedsUpdate is true for absent metrics or metrics older than the threshold.
func (h *HealthCalculator) NeedsUpdate(m *nutrition.HealthMetrics) bool {
	if m == nil {
		return true
	}
	return nutrition.NeedsHealthUpdateAfter(m.LastUpdated, h.now(), h.staleness)
}

// UpdateHealthMetrics recomputes a user's metrics from the current profile
// and persists the user.
type UpdateHealthMetrics struct {
	users UserRepository
	calc  *HealthCalculator
}

func NewUpdateHealthMetrics(users UserRepository, calc *HealthCalculator) *UpdateHealthMetrics {
	return &UpdateHealthMetrics{users: users, calc: calc}
}

// Execute leaves user untouched; the stored copy is returned on success. An
// empty activity level is inferred from the weekly activity inputs.
func (uc *UpdateHealthMetrics) Execute(ctx context.Context, user *store.User) result.Result[*store.User] {
	if user == nil {
		return result.Fail[*store.User](apperrors.ErrUserNotFound)
	}

	updated := *user
	metrics := uc.calc.Compute(updated.Profile())
	updated.HealthMetrics = &metrics
	updated.UpdatedAt = metrics.LastUpdated

	saved, err := uc.users.UpdateUser(ctx, &updated)
	if err != nil {
		return result.Fail[*store.User](err)
	}
	return result.Ok(saved)
}

// CheckHealthMetricsNeedUpdate reports whether a user's metrics are missing
// or stale.
type CheckHealthMetricsNeedUpdate struct {
	calc *HealthCalculator
}

func NewCheckHealthMetricsNeedUpdate(calc *HealthCalculator) *CheckHealthMetricsNeedUpdate {
	return &CheckHealthMetricsNeedUpdate{calc: calc}
}

func (uc *CheckHealthMetricsNeedUpdate) Execute(user *store.User) bool {
	if user == nil {
		return false
	}
	return uc.calc.NeedsUpdate(user.HealthMetrics)
}
