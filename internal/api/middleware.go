package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	localUserID = "userID"
	localToken  = "token"
)

func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		userID, err := s.auth.Authenticate(header)
		if err != nil {
			return s.fail(c, err)
		}

		c.Locals(localUserID, userID)
		c.Locals(localToken, header)
		return c.Next()
	}
}

// upgradeMiddleware authenticates the ?token= query parameter before the
// WebSocket handshake, since browsers cannot set headers on upgrade requests.
func (s *Server) upgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		userID, err := s.auth.Authenticate(c.Query("token"))
		if err != nil {
			return s.fail(c, err)
		}

		c.Locals(localUserID, userID)
		return c.Next()
	}
}

func (s *Server) metricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Route patterns keep label cardinality bounded.
		route := c.Route().Path
		if route == "" || route == "/" {
			route = "unmatched"
		}
		s.metrics.RecordRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}
