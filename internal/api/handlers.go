package api

import (
	"time"

	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	status, code := "healthy", fiber.StatusOK
	if s.storage != nil {
		if err := s.storage.Ping(); err != nil {
			s.logger.Warn("Storage ping failed", zap.Error(err))
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
	}

	body := fiber.Map{
		"status":    status,
		"version":   s.version,
		"timestamp": time.Now().Unix(),
	}
	if s.metrics != nil {
		body["metrics"] = s.metrics.Snapshot()
	}
	return c.Status(code).JSON(body)
}

// ==================== Auth ====================

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	r := s.auth.Register(c.UserContext(), req.Email, req.Password, req.DisplayName)
	return reply(s, c, "register", r, fiber.StatusCreated)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	return reply(s, c, "login", s.auth.Login(c.UserContext(), req.Email, req.Password), fiber.StatusOK)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	token, _ := c.Locals(localToken).(string)
	return reply(s, c, "logout", s.auth.Logout(token), fiber.StatusNoContent)
}

// ==================== Profile ====================

func (s *Server) handleGetMe(c *fiber.Ctx) error {
	return reply(s, c, "get_user", s.uc.GetUser.Execute(c.UserContext(), userID(c)), fiber.StatusOK)
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var in usecase.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request")
	}
	r := s.uc.UpdateProfile.Execute(c.UserContext(), userID(c), in)
	if result.IsSuccess(r) {
		s.pushProgress(c, userID(c), store.FormatDate(time.Now()))
	}
	return reply(s, c, "update_profile", r, fiber.StatusOK)
}

func (s *Server) handleGetHealth(c *fiber.Ctx) error {
	r := s.uc.GetUser.Execute(c.UserContext(), userID(c))
	health := result.Map(r, func(u *store.User) healthResponse {
		resp := healthResponse{
			Metrics:           u.HealthMetrics,
			Stale:             s.uc.CheckHealthMetricsNeedUpdate.Execute(u),
			StaleAfterSeconds: int64(s.uc.Calc.Staleness().Seconds()),
		}
		if m := u.HealthMetrics; m != nil {
			resp.BMICategory = s.uc.Calc.BMICategory(m.BMI)
			resp.ActivityDescription = nutrition.ActivityLevelDescription(m.ActivityLevel)
			resp.MealCalories = make(map[nutrition.MealCategory]int, len(nutrition.MealCategories))
			for _, cat := range nutrition.MealCategories {
				resp.MealCalories[cat] = m.MealCalories(cat)
			}
		}
		return resp
	})
	return reply(s, c, "get_health", health, fiber.StatusOK)
}

func (s *Server) handleRecomputeHealth(c *fiber.Ctx) error {
	user, err := result.Get(s.uc.GetUser.Execute(c.UserContext(), userID(c)))
	if err != nil {
		return s.fail(c, err)
	}
	r := s.uc.UpdateHealthMetrics.Execute(c.UserContext(), user)
	if result.IsSuccess(r) {
		s.pushProgress(c, user.ID, store.FormatDate(time.Now()))
	}
	return reply(s, c, "update_health_metrics", r, fiber.StatusOK)
}

// ==================== Catalog ====================

func (s *Server) handleSearchMeals(c *fiber.Ctx) error {
	category, ok := categoryParam(c.Query("category"))
	if !ok {
		return badRequest(c, "unknown meal category")
	}
	r := s.uc.Catalog.Search(c.UserContext(), c.Query("q"), category, c.QueryInt("limit", 0))
	return reply(s, c, "search_meals", r, fiber.StatusOK)
}

func (s *Server) handleGetMeal(c *fiber.Ctx) error {
	return reply(s, c, "get_meal", s.uc.Catalog.Get(c.UserContext(), c.Params("id")), fiber.StatusOK)
}

func (s *Server) handleListFavorites(c *fiber.Ctx) error {
	return reply(s, c, "list_favorites", s.uc.Catalog.Favorites(c.UserContext(), userID(c)), fiber.StatusOK)
}

func (s *Server) handleSetFavorite(favorite bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mealID := c.Params("mealId")
		r := s.uc.Catalog.SetFavorite(c.UserContext(), userID(c), mealID, favorite)
		resp := result.Map(r, func(f bool) favoriteResponse {
			return favoriteResponse{MealID: mealID, Favorite: f}
		})
		return reply(s, c, "set_favorite", resp, fiber.StatusOK)
	}
}

// ==================== Menu ====================

func (s *Server) handleMenuDay(c *fiber.Ctx) error {
	return reply(s, c, "menu_day", s.uc.Menu.Day(c.UserContext(), userID(c), c.Params("date")), fiber.StatusOK)
}

func (s *Server) handleMenuWeek(c *fiber.Ctx) error {
	return reply(s, c, "menu_week", s.uc.Menu.Week(c.UserContext(), userID(c), c.Params("date")), fiber.StatusOK)
}

func (s *Server) handleAddMenuItem(c *fiber.Ctx) error {
	var req menuItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.MealID == "" {
		return badRequest(c, "meal_id is required")
	}
	category, _ := categoryParam(string(req.Category))
	r := s.uc.Menu.AddItem(c.UserContext(), userID(c), req.Date, category, req.MealID)
	return reply(s, c, "add_menu_item", r, fiber.StatusCreated)
}

func (s *Server) handleRemoveMenuItem(c *fiber.Ctx) error {
	r := s.uc.Menu.RemoveItem(c.UserContext(), userID(c), c.Params("id"))
	return reply(s, c, "remove_menu_item", r, fiber.StatusNoContent)
}

func (s *Server) handlePlanDay(c *fiber.Ctx) error {
	date := c.Params("date")
	if _, err := store.ParseDate(date); err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}
	r := s.uc.Menu.PlanDay(c.UserContext(), userID(c), date)
	if result.IsSuccess(r) {
		s.pushProgress(c, userID(c), date)
	}
	return reply(s, c, "plan_day", r, fiber.StatusCreated)
}
