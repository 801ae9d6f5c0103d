package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/karloscodes/dataaccess"
	"github.com/karloscodes/dataaccess/database"
)

// ErrorHandler translates handler errors into JSON responses.
//
// Invalid parameters map to 400, cancelled data access calls to 503 and
// fiber errors keep their code. Anything else is a 500 whose details are
// only shown when isDev is set.
func ErrorHandler(logger *slog.Logger, isDev bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)

		level := slog.LevelWarn
		if code >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.UserContext(), level, "request failed",
			slog.Any("error", err),
			slog.String("path", c.Path()),
			slog.String("method", c.Method()),
			slog.Int("status", code),
		)

		message := err.Error()
		if code == fiber.StatusInternalServerError && !isDev {
			message = utils.StatusMessage(code)
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   utils.StatusMessage(code),
			"message": message,
		})
	}
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, database.ErrInvalidParameter):
		return fiber.StatusBadRequest
	case errors.Is(err, dataaccess.ErrCancelled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
