// Package app wires configuration, providers, services and the HTTP server.
// The server binary and the job CLI share it.
package app

import (
	"context"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/handlers"
	"github.com/palpitesia/palpites-backend/internal/llm"
	"github.com/palpitesia/palpites-backend/internal/metrics"
	"github.com/palpitesia/palpites-backend/internal/middleware"
	"github.com/palpitesia/palpites-backend/internal/payments"
	"github.com/palpitesia/palpites-backend/internal/routes"
	"github.com/palpitesia/palpites-backend/internal/services"
	"github.com/palpitesia/palpites-backend/internal/sportsdata"
	"github.com/palpitesia/palpites-backend/internal/web"
	"github.com/palpitesia/palpites-backend/internal/whatsapp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container holds every long-lived dependency.
type Container struct {
	Config  *config.Config
	DB      *gorm.DB
	Metrics *metrics.Manager

	Sports   *sportsdata.Client
	LLM      *llm.Client
	Payments *payments.Client
	Sender   services.Sender
	Redis    *redis.Client

	Leads         *services.LeadService
	Checkout      *services.CheckoutService
	Subscriptions *services.SubscriptionService
	Picks         *services.PickService
	Content       *services.ContentService
	Broadcast     *services.BroadcastService
	Reports       *services.ReportService
	Inbound       *services.InboundService
	Admin         *services.AdminService
}

// Options adjusts how New builds providers. Tests use it to point clients at
// fakes.
type Options struct {
	Registry      *prometheus.Registry
	Sender        services.Sender
	Pacer         services.Pacer
	StripeBackend string
	SportsOptions []sportsdata.Option
	DisableRedis  bool
}

func New(ctx context.Context, cfg *config.Config, db *gorm.DB, opts Options) *Container {
	c := &Container{Config: cfg, DB: db, Metrics: metrics.New(opts.Registry)}

	sportsOpts := append([]sportsdata.Option(nil), opts.SportsOptions...)
	if cfg.RedisAddr != "" && !opts.DisableRedis {
		rdb, err := sportsdata.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Warn("redis unavailable, sports responses will not be cached", "error", err)
		} else {
			c.Redis = rdb
			sportsOpts = append(sportsOpts, sportsdata.WithCache(sportsdata.NewRedisCache(rdb), cfg.CacheTTL))
		}
	}
	c.Sports = sportsdata.New(cfg.APIFootballBase, cfg.APIFootballKey, sportsOpts...)

	c.LLM = llm.NewClient([]llm.Provider{
		{Name: "glm", URL: cfg.GLMAPIURL, APIKey: cfg.GLMAPIKey, Model: cfg.GLMModel},
		{Name: "deepseek", URL: cfg.DeepSeekAPIURL, APIKey: cfg.DeepSeekAPIKey, Model: cfg.DeepSeekModel},
		{Name: "openai", URL: cfg.OpenAIAPIURL, APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel},
	}, cfg.AITimeout)

	var payOpts []payments.Option
	if opts.StripeBackend != "" {
		payOpts = append(payOpts, payments.WithBackendURL(opts.StripeBackend))
	}
	c.Payments = payments.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, payOpts...)

	c.Sender = opts.Sender
	if c.Sender == nil {
		if cfg.DryRun || cfg.WhatsAppAPIKey == "" {
			slog.Info("whatsapp dry run enabled")
			c.Sender = whatsapp.DryRunSender{}
		} else {
			c.Sender = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppAPIKey)
		}
	}
	pacer := opts.Pacer
	if pacer == nil {
		pacer = whatsapp.NewPacer(cfg.BroadcastInterval)
	}

	c.Leads = services.NewLeadService(db, c.Metrics)
	c.Checkout = services.NewCheckoutService(c.Payments, cfg, c.Metrics)
	c.Subscriptions = services.NewSubscriptionService(db, c.Metrics)
	c.Picks = services.NewPickService(db, c.Sports, c.Metrics)
	c.Content = services.NewContentService(db, c.Sports, c.LLM, cfg.PriorityLeagues(), c.Metrics)
	c.Broadcast = services.NewBroadcastService(db, c.Sports, c.Sender, pacer, services.BroadcastOptions{
		SettlementReport: cfg.SettlementReport,
		WABANumber:       cfg.WABANumber,
	}, c.Metrics)
	c.Reports = services.NewReportService(db, c.Broadcast, c.Metrics)
	c.Inbound = services.NewInboundService(db, c.Sender, c.Metrics)
	c.Admin = services.NewAdminService(db, cfg, services.Status{
		Database:   db != nil,
		Stripe:     c.Payments.Configured(),
		WhatsApp:   cfg.WhatsAppAPIKey != "",
		SportsData: c.Sports.Configured(),
		LLM:        c.LLM.Available(),
		Redis:      c.Redis != nil,
	})
	return c
}

// Server builds the Fiber app with global middleware and every route.
func (c *Container) Server() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: ErrorHandler,
		Views:        web.Engine(),
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(c.Config))
	app.Use(middleware.SecurityHeaders())
	app.Use(c.Metrics.Middleware())

	routes.Setup(app, c.Config, c.Metrics,
		handlers.NewHealthHandler(c.DB),
		handlers.NewLeadHandler(c.Leads),
		handlers.NewCheckoutHandler(c.Checkout, c.Config.PublicBaseURL),
		handlers.NewWebhookHandler(c.Payments, c.Subscriptions, c.Inbound),
		handlers.NewJobHandler(c.Picks, c.Content, c.Broadcast, c.Reports),
		handlers.NewAdminHandler(c.Admin),
		handlers.NewSiteHandler(),
	)
	return app
}

// Close releases connections the container opened.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
}

// ErrorHandler hides details of server errors from clients.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
