package api

import (
	"strings"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps an AppError code onto an HTTP status.
func statusFor(err error) int {
	code := apperrors.GetCode(err)
	switch {
	case code == "":
		return fiber.StatusInternalServerError
	case code == apperrors.ErrUserExists.Code:
		return fiber.StatusConflict
	case code == apperrors.ErrForbidden.Code:
		return fiber.StatusForbidden
	case code == apperrors.ErrRemoteUnavailable.Code:
		return fiber.StatusServiceUnavailable
	case code == apperrors.ErrRemoteRejected.Code:
		return fiber.StatusBadGateway
	case strings.HasPrefix(code, "AUTH_"):
		return fiber.StatusUnauthorized
	}

	switch code {
	case apperrors.ErrUserNotFound.Code,
		apperrors.ErrMealNotFound.Code,
		apperrors.ErrIntakeNotFound.Code,
		apperrors.ErrMenuItemNotFound.Code,
		apperrors.ErrNotFound.Code:
		return fiber.StatusNotFound
	case apperrors.ErrProfileInvalid.Code,
		apperrors.ErrMealInvalid.Code,
		apperrors.ErrIntakeInvalid.Code,
		apperrors.ErrMenuItemInvalid.Code,
		apperrors.ErrBadRequest.Code:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	body := fiber.Map{"error": err.Error()}
	if code := apperrors.GetCode(err); code != "" {
		body["code"] = code
	}

	if status >= fiber.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		if status == fiber.StatusInternalServerError {
			body["error"] = "internal server error"
		}
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  apperrors.ErrBadRequest.Code,
	})
}

// observe counts the outcome of a named use case.
func observe[T any](s *Server, name string, r result.Result[T]) {
	if s.metrics != nil {
		s.metrics.RecordUseCase(name, result.IsSuccess(r))
	}
}

// reply writes a use-case result: the value with status on success, the
// mapped error otherwise.
func reply[T any](s *Server, c *fiber.Ctx, name string, r result.Result[T], status int) error {
	observe(s, name, r)
	return result.Match(r,
		func(v T) error {
			if status == fiber.StatusNoContent {
				return c.SendStatus(status)
			}
			return c.Status(status).JSON(v)
		},
		func(e result.Error[T]) error {
			return s.fail(c, e)
		},
		func() error {
			return c.SendStatus(fiber.StatusAccepted)
		},
	)
}
