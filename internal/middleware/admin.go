package middleware

import (
	"crypto/subtle"
	"net/url"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/services"
)

// AdminRequired gates the dashboard. It accepts:
// 1. The X-Admin-Token header when ADMIN_TOKEN is set
// 2. A signed session token in the admin_auth cookie
// Pages redirect to the login form; API routes answer 401.
func AdminRequired(cfg *config.Config) fiber.Handler {
	var session fiber.Handler
	if cfg.AdminConfigured() {
		session = jwtware.New(jwtware.Config{
			SigningKey:     jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: cfg.AdminSigningKey()},
			TokenLookup:    "cookie:" + config.AdminCookieName,
			SuccessHandler: requireAdminSubject,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return deny(c)
			},
		})
	}

	return func(c *fiber.Ctx) error {
		if tokenMatches(c.Get("X-Admin-Token"), cfg.AdminToken) {
			return c.Next()
		}
		if session == nil {
			return deny(c)
		}
		return session(c)
	}
}

func requireAdminSubject(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return deny(c)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub != services.AdminSubject {
		return deny(c)
	}
	return c.Next()
}

func deny(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}
	return c.Redirect("/admin/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
}

func tokenMatches(got, want string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
