package usecase

import (
	"context"

	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
)

// GetMealIntakeByDate lists a user's intake records for one date.
type GetMealIntakeByDate struct {
	intakes MealIntakeRepository
}

func NewGetMealIntakeByDate(intakes MealIntakeRepository) *GetMealIntakeByDate {
	return &GetMealIntakeByDate{intakes: intakes}
}

func (uc *GetMealIntakeByDate) Execute(ctx context.Context, userID, date string) result.Result[[]store.MealIntake] {
	intakes, err := uc.intakes.GetMealIntakeByDate(ctx, userID, date)
	if err != nil {
		return result.Fail[[]store.MealIntake](err)
	}
	return result.Ok(intakes)
}

// GetMealIntake loads one record.
type GetMealIntake struct {
	intakes MealIntakeRepository
}

func NewGetMealIntake(intakes MealIntakeRepository) *GetMealIntake {
	return &GetMealIntake{intakes: intakes}
}

func (uc *GetMealIntake) Execute(ctx context.Context, id string) result.Result[*store.MealIntake] {
	intake, err := uc.intakes.GetMealIntake(ctx, id)
	if err != nil {
		return result.Fail[*store.MealIntake](err)
	}
	return result.Ok(intake)
}

// SaveMealIntake persists one intake record.
type SaveMealIntake struct {
	intakes MealIntakeRepository
}

func NewSaveMealIntake(intakes MealIntakeRepository) *SaveMealIntake {
	return &SaveMealIntake{intakes: intakes}
}

func (uc *SaveMealIntake) Execute(ctx context.Context, intake *store.MealIntake) result.Result[*store.MealIntake] {
	if err := uc.intakes.SaveMealIntake(ctx, intake); err != nil {
		return result.Fail[*store.MealIntake](err)
	}
	return result.Ok(intake)
}

// UpdateConsumedStatus sets the consumed flag of one record.
type UpdateConsumedStatus struct {
	intakes MealIntakeRepository
}

func NewUpdateConsumedStatus(intakes MealIntakeRepository) *UpdateConsumedStatus {
	return &UpdateConsumedStatus{intakes: intakes}
}

func (uc *UpdateConsumedStatus) Execute(ctx context.Context, id string, isConsumed bool) result.Result[struct{}] {
	if err := uc.intakes.UpdateConsumedStatus(ctx, id, isConsumed); err != nil {
		return result.Fail[struct{}](err)
	}
	return result.Ok(struct{}{})
}

// DeleteMealIntake removes one record.
type DeleteMealIntake struct {
	intakes MealIntakeRepository
}

func NewDeleteMealIntake(intakes MealIntakeRepository) *DeleteMealIntake {
	return &DeleteMealIntake{intakes: intakes}
}

func (uc *DeleteMealIntake) Execute(ctx context.Context, id string) result.Result[struct{}] {
	if err := uc.intakes.DeleteMealIntake(ctx, id); err != nil {
		return result.Fail[struct{}](err)
	}
	return result.Ok(struct{}{})
}
