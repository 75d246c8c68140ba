package usecase

import (
	"context"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
)

// MenuPlanner manages daily menus and turns them into planned intakes.
type MenuPlanner struct {
	menu    DailyMenuRepository
	meals   MealRepository
	intakes MealIntakeRepository
}

func NewMenuPlanner(menu DailyMenuRepository, meals MealRepository, intakes MealIntakeRepository) *MenuPlanner {
	return &MenuPlanner{menu: menu, meals: meals, intakes: intakes}
}

func (p *MenuPlanner) Day(ctx context.Context, userID, date string) result.Result[store.DailyMenuDay] {
	if _, err := store.ParseDate(date); err != nil {
		return result.Fail[store.DailyMenuDay](apperrors.Wrap(err, apperrors.ErrBadRequest.Code, apperrors.ErrBadRequest.Message))
	}
	items, err := p.menu.GetMenuItems(ctx, userID, date, date)
	if err != nil {
		return result.Fail[store.DailyMenuDay](err)
	}
	return result.Ok(store.BuildMenuDay(date, items))
}

// Week returns the Monday-based week containing date.
func (p *MenuPlanner) Week(ctx context.Context, userID, date string) result.Result[store.DailyMenuWeek] {
	day, err := store.ParseDate(date)
	if err != nil {
		return result.Fail[store.DailyMenuWeek](apperrors.Wrap(err, apperrors.ErrBadRequest.Code, apperrors.ErrBadRequest.Message))
	}
	start := store.WeekStart(day)
	end := start.AddDate(0, 0, 6)

	items, err := p.menu.GetMenuItems(ctx, userID, store.FormatDate(start), store.FormatDate(end))
	if err != nil {
		return result.Fail[store.DailyMenuWeek](err)
	}
	return result.Ok(store.BuildMenuWeek(start, items))
}

// AddItem assigns a catalog meal to a category slot, copying its name and
// calories.
func (p *MenuPlanner) AddItem(ctx context.Context, userID, date string, category nutrition.MealCategory, mealID string) result.Result[*store.DailyMenuItem] {
	meal, err := p.meals.GetMeal(ctx, mealID)
	if err != nil {
		return result.Fail[*store.DailyMenuItem](err)
	}

	item := &store.DailyMenuItem{
		UserID:   userID,
		Date:     date,
		Category: category,
		MealID:   meal.ID,
		MealName: meal.Name,
		Calories: meal.Calories,
	}
	if err := p.menu.SaveMenuItem(ctx, item); err != nil {
		return result.Fail[*store.DailyMenuItem](err)
	}
	return result.Ok(item)
}

func (p *MenuPlanner) RemoveItem(ctx context.Context, userID, id string) result.Result[struct{}] {
	if err := p.menu.DeleteMenuItem(ctx, userID, id); err != nil {
		return result.Fail[struct{}](err)
	}
	return result.Ok(struct{}{})
}

// PlanDay copies the day's menu into unconsumed intake records, one per menu
// item. Items that already have a planned intake are skipped, so planning
// twice is harmless.
func (p *MenuPlanner) PlanDay(ctx context.Context, userID, date string) result.Result[[]store.MealIntake] {
	items, err := p.menu.GetMenuItems(ctx, userID, date, date)
	if err != nil {
		return result.Fail[[]store.MealIntake](err)
	}
	existing, err := p.intakes.GetMealIntakeByDate(ctx, userID, date)
	if err != nil {
		return result.Fail[[]store.MealIntake](err)
	}

	planned := make(map[string]bool, len(existing))
	for _, in := range existing {
		if in.MenuItemID != "" {
			planned[in.MenuItemID] = true
		}
	}

	created := make([]store.MealIntake, 0, len(items))
	for _, item := range items {
		if planned[item.ID] {
			continue
		}
		intake := &store.MealIntake{
			UserID:      userID,
			MealID:      item.MealID,
			MenuItemID:  item.ID,
			MealName:    item.MealName,
			Date:        date,
			Category:    item.Category,
			Calories:    item.Calories,
			PortionSize: 1,
		}
		if err := p.intakes.SaveMealIntake(ctx, intake); err != nil {
			return result.Fail[[]store.MealIntake](err)
		}
		planned[item.ID] = true
		created = append(created, *intake)
	}
	return result.Ok(created)
}
