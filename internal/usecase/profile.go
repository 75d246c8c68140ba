package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/security"
	"github.com/gmsas95/nutritrack/internal/store"
)

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	DisplayName           *string                  `json:"display_name,omitempty"`
	PhotoURL              *string                  `json:"photo_url,omitempty"`
	WeightKg              *float64                 `json:"weight_kg,omitempty"`
	HeightCm              *float64                 `json:"height_cm,omitempty"`
	Age                   *int                     `json:"age,omitempty"`
	Gender                *nutrition.Gender        `json:"gender,omitempty"`
	ActivityMinutesPerDay *int                     `json:"activity_minutes_per_day,omitempty"`
	ActivityDaysPerWeek   *int                     `json:"activity_days_per_week,omitempty"`
	ActivityLevel         *nutrition.ActivityLevel `json:"activity_level,omitempty"`
	Goal                  *nutrition.Goal          `json:"goal,omitempty"`
}

// Apply copies the set fields onto u.
func (in ProfileInput) Apply(u *store.User) {
	if in.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.PhotoURL != nil {
		u.PhotoURL = *in.PhotoURL
	}
	if in.WeightKg != nil {
		u.WeightKg = *in.WeightKg
	}
	if in.HeightCm != nil {
		u.HeightCm = *in.HeightCm
	}
	if in.Age != nil {
		u.Age = *in.Age
	}
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
	if in.ActivityMinutesPerDay != nil {
		u.ActivityMinutesPerDay = *in.ActivityMinutesPerDay
	}
	if in.ActivityDaysPerWeek != nil {
		u.ActivityDaysPerWeek = *in.ActivityDaysPerWeek
	}
	if in.ActivityLevel != nil {
		u.ActivityLevel = *in.ActivityLevel
	}
	if in.Goal != nil {
		u.Goal = *in.Goal
	}
}

// ValidateProfile rejects values no formula can make sense of. Zero weight
// or height is allowed and yields zero metrics.
func ValidateProfile(u *store.User) error {
	var problems []string
	if err := security.NewInputValidator(security.MaxNameLength).Validate(u.DisplayName); err != nil {
		problems = append(problems, "display_name: "+err.Error())
	}
	if u.WeightKg < 0 || u.WeightKg > 700 {
		problems = append(problems, "weight_kg out of range")
	}
	if u.HeightCm < 0 || u.HeightCm > 300 {
		problems = append(problems, "height_cm out of range")
	}
	if u.Age < 0 || u.Age > 150 {
		problems = append(problems, "age out of range")
	}
	if u.Gender != "" && !u.Gender.Valid() {
		problems = append(problems, fmt.Sprintf("unknown gender %q", u.Gender))
	}
	if u.ActivityMinutesPerDay < 0 || u.ActivityMinutesPerDay > 24*60 {
		problems = append(problems, "activity_minutes_per_day out of range")
	}
	if u.ActivityDaysPerWeek < 0 || u.ActivityDaysPerWeek > 7 {
		problems = append(problems, "activity_days_per_week must be between 0 and 7")
	}
	if u.ActivityLevel != "" && !u.ActivityLevel.Valid() {
		problems = append(problems, fmt.Sprintf("unknown activity level %q", u.ActivityLevel))
	}
	if u.Goal != "" && !u.Goal.Valid() {
		problems = append(problems, fmt.Sprintf("unknown goal %q", u.Goal))
	}

	if len(problems) > 0 {
		return apperrors.New(apperrors.ErrProfileInvalid.Code, strings.Join(problems, "; "))
	}
	return nil
}

type GetUser struct {
	users UserRepository
}

func NewGetUser(users UserRepository) *GetUser {
	return &GetUser{users: users}
}

func (uc *GetUser) Execute(ctx context.Context, id string) result.Result[*store.User] {
	user, err := uc.users.GetUser(ctx, id)
	if err != nil {
		return result.Fail[*store.User](err)
	}
	return result.Ok(user)
}

// UpdateProfile applies a profile change and recomputes the metrics in the
// same write.
type UpdateProfile struct {
	users  UserRepository
	update *UpdateHealthMetrics
}

func NewUpdateProfile(users UserRepository, update *UpdateHealthMetrics) *UpdateProfile {
	return &UpdateProfile{users: users, update: update}
}

func (uc *UpdateProfile) Execute(ctx context.Context, userID string, in ProfileInput) result.Result[*store.User] {
	user, err := uc.users.GetUser(ctx, userID)
	if err != nil {
		return result.Fail[*store.User](err)
	}

	in.Apply(user)
	if err := ValidateProfile(user); err != nil {
		return result.Fail[*store.User](err)
	}
	return uc.update.Execute(ctx, user)
}

// RecomputeStaleMetrics refreshes the metrics of every user whose metrics
// are missing or stale and whose profile has weight and height.
type RecomputeStaleMetrics struct {
	users    UserRepository
	check    *CheckHealthMetricsNeedUpdate
	update   *UpdateHealthMetrics
	pageSize int
}

func NewRecomputeStaleMetrics(users UserRepository, check *CheckHealthMetricsNeedUpdate, update *UpdateHealthMetrics) *RecomputeStaleMetrics {
	return &RecomputeStaleMetrics{users: users, check: check, update: update, pageSize: 100}
}

// RecomputeError reports the users a recompute pass could not update. The
// pass still covers every other user.
type RecomputeError struct {
	Updated  int
	Failures []error
}

func (e *RecomputeError) Error() string {
	return fmt.Sprintf("health recompute: %d users failed, %d updated: %v", len(e.Failures), e.Updated, errors.Join(e.Failures...))
}

func (e *RecomputeError) Unwrap() []error { return e.Failures }

// Execute returns the number of users updated. A failing user does not stop
// the pass; failures are reported together as a *RecomputeError.
func (uc *RecomputeStaleMetrics) Execute(ctx context.Context) result.Result[int] {
	updated := 0
	var failures []error
	for offset := 0; ; offset += uc.pageSize {
		if err := ctx.Err(); err != nil {
			return result.Fail[int](err)
		}

		users, err := uc.users.ListUsers(ctx, uc.pageSize, offset)
		if err != nil {
			return result.Fail[int](err)
		}

		for i := range users {
			u := &users[i]
			if u.WeightKg <= 0 || u.HeightCm <= 0 || !uc.check.Execute(u) {
				continue
			}
			if _, err := result.Get(uc.update.Execute(ctx, u)); err != nil {
				failures = append(failures, fmt.Errorf("user %s: %w", u.ID, err))
				continue
			}
			updated++
		}

		if len(users) < uc.pageSize {
			if len(failures) > 0 {
				return result.Fail[int](&RecomputeError{Updated: updated, Failures: failures})
			}
			return result.Ok(updated)
		}
	}
}
