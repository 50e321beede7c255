package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/dto"
)

// CronRequired protects job triggers when CRON_SECRET is set. The scheduler
// sends it as a bearer token; operators may use X-Admin-Token instead.
func CronRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.CronSecret == "" {
			return c.Next()
		}
		bearer := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if tokenMatches(bearer, cfg.CronSecret) || tokenMatches(c.Get("X-Admin-Token"), cfg.AdminToken) {
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}
}
