package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LogRequest logs every request once it has been handled, tagged with the
// request ID set by the requestid middleware.
func LogRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		attrs := []any{
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			slog.Error("request completed", attrs...)
		case status >= fiber.StatusBadRequest:
			slog.Warn("request completed", attrs...)
		default:
			slog.Info("request completed", attrs...)
		}
		return err
	}
}
