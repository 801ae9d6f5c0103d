package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/karloscodes/dataaccess"
)

// RequestLogger emits structured request logs using the provided logger.
// Health check endpoints (/_health) are not logged to reduce noise.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		stop := time.Since(start)

		path := c.Path()
		if strings.HasPrefix(path, "/_health") {
			return err
		}

		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", path),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", stop),
			slog.String("ip", c.IP()),
		}
		if target, ok := dataaccess.TargetFrom(c.UserContext()); ok {
			attrs = append(attrs, slog.String("database", target.String()))
		}
		logger.LogAttrs(c.UserContext(), slog.LevelInfo, "http request", attrs...)

		return err
	}
}
