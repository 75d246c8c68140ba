package api

import (
	"strings"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func (s *Server) setupRoutes() {
	// Middleware
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.allowOrigins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	if s.metrics != nil {
		s.app.Use(s.metricsMiddleware())
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	// Health check
	s.app.Get("/api/health", s.handleHealth)

	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/register", s.handleRegister)
	api.Post("/auth/login", s.handleLogin)

	// Protected routes
	protected := api.Use(s.authMiddleware())

	protected.Post("/auth/logout", s.handleLogout)

	// Profile and health metrics
	protected.Get("/me", s.handleGetMe)
	protected.Put("/me/profile", s.handleUpdateProfile)
	protected.Get("/me/health", s.handleGetHealth)
	protected.Post("/me/health/recompute", s.handleRecomputeHealth)

	// Catalog
	protected.Get("/meals", s.handleSearchMeals)
	protected.Get("/meals/:id", s.handleGetMeal)
	protected.Get("/favorites", s.handleListFavorites)
	protected.Put("/favorites/:mealId", s.handleSetFavorite(true))
	protected.Delete("/favorites/:mealId", s.handleSetFavorite(false))

	// Menu
	protected.Get("/menu/day/:date", s.handleMenuDay)
	protected.Get("/menu/week/:date", s.handleMenuWeek)
	protected.Post("/menu/items", s.handleAddMenuItem)
	protected.Delete("/menu/items/:id", s.handleRemoveMenuItem)
	protected.Post("/menu/day/:date/plan", s.handlePlanDay)

	// Intake
	protected.Get("/intake/:date", s.handleListIntake)
	protected.Post("/intake", s.handleCreateIntake)
	protected.Patch("/intake/:id/consumed", s.handleSetConsumed)
	protected.Delete("/intake/:id", s.handleDeleteIntake)

	protected.Get("/progress/:date", s.handleProgress)

	// WebSocket
	s.app.Use("/ws", s.upgradeMiddleware())
	s.app.Get("/ws/progress", websocket.New(s.handleProgressSocket))
}

func (s *Server) allowOrigins() []string {
	if len(s.config.Security.AllowOrigins) == 0 {
		return []string{"*"}
	}
	return s.config.Security.AllowOrigins
}
