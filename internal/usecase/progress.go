package usecase

import (
	"context"

	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"golang.org/x/sync/errgroup"
)

// GetNutritionProgress combines the consumed and planned totals of a date
// into a NutritionInfo.
type GetNutritionProgress struct {
	intakes MealIntakeRepository
}

func NewGetNutritionProgress(intakes MealIntakeRepository) *GetNutritionProgress {
	return &GetNutritionProgress{intakes: intakes}
}

// Execute runs both reads concurrently and waits for both. When both fail
// the consumed-read error is reported.
func (uc *GetNutritionProgress) Execute(ctx context.Context, userID, date string, targetCalories int) result.Result[nutrition.NutritionInfo] {
	var (
		consumed    *float64
		planned     float64
		consumedErr error
		plannedErr  error
	)

	// plain Group: one failing read must not cancel the other
	var g errgroup.Group
	g.Go(func() error {
		consumed, consumedErr = uc.intakes.GetTotalConsumedCalories(ctx, userID, date)
		return consumedErr
	})
	g.Go(func() error {
		planned, plannedErr = uc.intakes.GetTotalPlannedCalories(ctx, userID, date)
		return plannedErr
	})
	_ = g.Wait()

	if consumedErr != nil {
		return result.Fail[nutrition.NutritionInfo](consumedErr)
	}
	if plannedErr != nil {
		return result.Fail[nutrition.NutritionInfo](plannedErr)
	}

	consumedTotal := 0.0
	if consumed != nil {
		consumedTotal = *consumed
	}
	return result.Ok(nutrition.NewNutritionInfo(date, targetCalories, planned, consumedTotal))
}
