package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/projecthub/backend/pkg/logger"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		}
		if user := GetCurrentUser(c); user != nil {
			fields["user_id"] = user.ID.String()
		}
		logger.Info("http_request", fields)

		return err
	}
}
