package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/handlers"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/middleware"
)

// Paths exempt from the general API rate limit: machine callers that retry.
var unlimitedPrefixes = []string{
	"/api/webhooks/",
	"/api/jobs/",
	"/api/picks",
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	m *metrics.Manager,
	healthHandler *handlers.HealthHandler,
	leadHandler *handlers.LeadHandler,
	checkoutHandler *handlers.CheckoutHandler,
	webhookHandler *handlers.WebhookHandler,
	jobHandler *handlers.JobHandler,
	adminHandler *handlers.AdminHandler,
	siteHandler *handlers.SiteHandler,
) {
	adminRequired := middleware.AdminRequired(cfg)
	cronRequired := middleware.CronRequired(cfg)

	// Site pages
	app.Get("/", siteHandler.Index)
	app.Get("/success", siteHandler.Success)
	app.Get("/cancel", siteHandler.Cancel)
	app.Get("/privacidade", siteHandler.Privacy)
	app.Get("/termos", siteHandler.Terms)

	// Admin pages
	app.Get("/admin/login", adminHandler.LoginPage)
	app.Get("/admin", adminRequired, adminHandler.DashboardPage)

	app.Get("/metrics", m.Handler())

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next: func(c *fiber.Ctx) bool {
			for _, p := range unlimitedPrefixes {
				if strings.HasPrefix(c.Path(), p) {
					return true
				}
			}
			return false
		},
	}))

	api.Get("/health", healthHandler.Check)

	// Public forms: 10 req/min per IP (stricter)
	forms := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	api.Post("/leads", forms, leadHandler.Create)
	api.Post("/checkout", forms, checkoutHandler.Create)

	// Webhooks: Stripe is signature-checked, the WhatsApp gateway always gets 200
	webhooks := api.Group("/webhooks")
	webhooks.Post("/stripe", webhookHandler.HandleStripe)
	webhooks.Post("/stripe/whatsapp", webhookHandler.HandleWhatsApp)
	webhooks.Get("/stripe/whatsapp", webhookHandler.ProbeWhatsApp)
	webhooks.Post("/whatsapp", webhookHandler.HandleWhatsApp)
	webhooks.Get("/whatsapp", webhookHandler.ProbeWhatsApp)

	// Scheduled jobs (CRON_SECRET when configured)
	api.Get("/picks", cronRequired, jobHandler.GeneratePicks)
	api.Post("/picks", cronRequired, jobHandler.GeneratePicks)
	jobs := api.Group("/jobs", cronRequired)
	jobs.Get("/generate", jobHandler.GenerateContent)
	jobs.Post("/generate", jobHandler.GenerateContent)
	jobs.Get("/send", jobHandler.Broadcast)
	jobs.Post("/send", jobHandler.Broadcast)
	jobs.Post("/daily-report", jobHandler.DailyReport)
	jobs.Post("/monthly-report", jobHandler.MonthlyReport)
	api.Post("/send-daily-report", cronRequired, jobHandler.DailyReport)
	api.Post("/send-monthly-report", cronRequired, jobHandler.MonthlyReport)

	// Admin API. Login and logout stay open; the rest is gated per route so
	// the gate never wraps the login endpoint.
	api.Post("/admin/login", forms, adminHandler.Login)
	api.Post("/admin/logout", adminHandler.Logout)
	api.Get("/admin/dashboard", adminRequired, adminHandler.Dashboard)
	api.Get("/admin/diag", adminRequired, adminHandler.Diag)
	api.Put("/admin/picks/:id/result", adminRequired, adminHandler.SetPickResult)
}
