package api

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/security"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (s *Server) handleListIntake(c *fiber.Ctx) error {
	date := c.Params("date")
	if _, err := store.ParseDate(date); err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}
	r := s.uc.GetMealIntakeByDate.Execute(c.UserContext(), userID(c), date)
	return reply(s, c, "get_meal_intake_by_date", r, fiber.StatusOK)
}

func (s *Server) handleCreateIntake(c *fiber.Ctx) error {
	var req intakeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	category, _ := categoryParam(string(req.Category))
	intake := &store.MealIntake{
		UserID:      userID(c),
		MealID:      req.MealID,
		MealName:    strings.TrimSpace(req.MealName),
		Date:        req.Date,
		Category:    category,
		PortionSize: req.PortionSize,
		IsConsumed:  req.IsConsumed,
	}
	if intake.PortionSize == 0 {
		intake.PortionSize = 1
	}
	if req.Calories != nil {
		intake.Calories = *req.Calories
	}

	// A catalog reference fills in whatever the client left out.
	if req.MealID != "" && (req.Calories == nil || intake.MealName == "") {
		meal, err := result.Get(s.uc.Catalog.Get(c.UserContext(), req.MealID))
		if err != nil {
			return s.fail(c, err)
		}
		if intake.MealName == "" {
			intake.MealName = meal.Name
		}
		if req.Calories == nil {
			intake.Calories = meal.Calories
		}
	}
	if intake.MealName == "" {
		return badRequest(c, "meal_name or meal_id is required")
	}
	if err := security.ValidateName("meal_name", intake.MealName); err != nil {
		return s.fail(c, err)
	}

	r := s.uc.SaveMealIntake.Execute(c.UserContext(), intake)
	if result.IsSuccess(r) {
		s.pushProgress(c, intake.UserID, intake.Date)
	}
	return reply(s, c, "save_meal_intake", r, fiber.StatusCreated)
}

func (s *Server) handleSetConsumed(c *fiber.Ctx) error {
	var req consumedRequest
	if err := c.BodyParser(&req); err != nil || req.IsConsumed == nil {
		return badRequest(c, "is_consumed is required")
	}

	intake, err := s.ownIntake(c)
	if err != nil {
		return s.fail(c, err)
	}

	r := s.uc.UpdateConsumedStatus.Execute(c.UserContext(), intake.ID, *req.IsConsumed)
	if result.IsSuccess(r) {
		s.pushProgress(c, intake.UserID, intake.Date)
	}
	resp := result.Map(r, func(struct{}) consumedResponse {
		return consumedResponse{ID: intake.ID, IsConsumed: *req.IsConsumed}
	})
	return reply(s, c, "update_consumed_status", resp, fiber.StatusOK)
}

func (s *Server) handleDeleteIntake(c *fiber.Ctx) error {
	intake, err := s.ownIntake(c)
	if err != nil {
		return s.fail(c, err)
	}

	r := s.uc.DeleteMealIntake.Execute(c.UserContext(), intake.ID)
	if result.IsSuccess(r) {
		s.pushProgress(c, intake.UserID, intake.Date)
	}
	return reply(s, c, "delete_meal_intake", r, fiber.StatusNoContent)
}

// ownIntake loads the :id record and hides records of other users.
func (s *Server) ownIntake(c *fiber.Ctx) (*store.MealIntake, error) {
	intake, err := result.Get(s.uc.GetMealIntake.Execute(c.UserContext(), c.Params("id")))
	if err != nil {
		return nil, err
	}
	if intake.UserID != userID(c) {
		return nil, apperrors.ErrIntakeNotFound
	}
	return intake, nil
}

// ==================== Progress ====================

func (s *Server) handleProgress(c *fiber.Ctx) error {
	date := c.Params("date")
	if _, err := store.ParseDate(date); err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	var target int
	if raw := c.Query("target"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t < 0 {
			return badRequest(c, "target must be a non-negative integer")
		}
		target = t
	} else {
		t, err := s.userTarget(c.UserContext(), userID(c))
		if err != nil {
			return s.fail(c, err)
		}
		target = t
	}

	r := s.uc.GetNutritionProgress.Execute(c.UserContext(), userID(c), date, target)
	return reply(s, c, "get_nutrition_progress", r, fiber.StatusOK)
}

// userTarget is the stored daily target, or 0 before metrics exist.
func (s *Server) userTarget(ctx context.Context, id string) (int, error) {
	user, err := result.Get(s.uc.GetUser.Execute(ctx, id))
	if err != nil {
		return 0, err
	}
	if user.HealthMetrics == nil {
		return 0, nil
	}
	return user.HealthMetrics.DailyCalorieTarget, nil
}

// progress computes a user's NutritionInfo for date against their own target.
func (s *Server) progress(ctx context.Context, id, date string) result.Result[nutrition.NutritionInfo] {
	target, err := s.userTarget(ctx, id)
	if err != nil {
		return result.Fail[nutrition.NutritionInfo](err)
	}
	return s.uc.GetNutritionProgress.Execute(ctx, id, date, target)
}

// pushProgress sends fresh progress to the user's open sockets, if any.
func (s *Server) pushProgress(c *fiber.Ctx, id, date string) {
	if !s.hub.HasSubscribers(id) {
		return
	}
	info, err := result.Get(s.progress(c.UserContext(), id, date))
	if err != nil {
		s.logger.Warn("Failed to compute progress for push", zap.String("user_id", id), zap.Error(err))
		return
	}
	s.hub.Publish(id, progressEvent{Type: "progress", Data: info})
}

// categoryParam normalizes a category; empty means "any".
func categoryParam(raw string) (nutrition.MealCategory, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return "", true
	}
	cat := nutrition.MealCategory(raw)
	return cat, cat.Valid()
}
