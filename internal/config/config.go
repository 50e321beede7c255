package config

import (
	"fmt"
	"time"
)

// AdminCookieName is the cookie carrying the signed admin session.
const AdminCookieName = "admin_auth"

// Checkout plans accepted by the checkout endpoint.
const (
	PlanFootballMonthly   = "football_monthly"
	PlanFootballQuarterly = "football_quarterly"
	PlanFootballYearly    = "football_yearly"
	PlanComboMonthly      = "combo_monthly"
	PlanComboQuarterly    = "combo_quarterly"
	PlanComboYearly       = "combo_yearly"
)

// Plans lists every checkout plan in display order.
var Plans = []string{
	PlanFootballMonthly,
	PlanFootballQuarterly,
	PlanFootballYearly,
	PlanComboMonthly,
	PlanComboQuarterly,
	PlanComboYearly,
}

type Config struct {
	// Server
	Port          string `koanf:"port"`
	AppEnv        string `koanf:"app_env"`
	PublicBaseURL string `koanf:"public_base_url"`
	CORSOrigins   string `koanf:"cors_origins"`

	// Database
	DatabaseURL string `koanf:"database_url"`
	DBHost      string `koanf:"db_host"`
	DBPort      string `koanf:"db_port"`
	DBUser      string `koanf:"db_user"`
	DBPassword  string `koanf:"db_password"`
	DBName      string `koanf:"db_name"`
	DBSSLMode   string `koanf:"db_sslmode"`

	// Cache for sports provider responses, optional
	RedisAddr string        `koanf:"redis_addr"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	// Stripe
	StripeSecretKey              string `koanf:"stripe_secret_key"`
	StripeWebhookSecret          string `koanf:"stripe_webhook_secret"`
	StripePriceFootballMonthly   string `koanf:"stripe_price_football_monthly"`
	StripePriceFootballQuarterly string `koanf:"stripe_price_football_quarterly"`
	StripePriceFootballYearly    string `koanf:"stripe_price_football_yearly"`
	StripePriceComboMonthly      string `koanf:"stripe_price_combo_monthly"`
	StripePriceComboQuarterly    string `koanf:"stripe_price_combo_quarterly"`
	StripePriceComboYearly       string `koanf:"stripe_price_combo_yearly"`

	// WhatsApp (360dialog)
	WhatsAppAPIURL    string        `koanf:"whatsapp_api_url"`
	WhatsAppAPIKey    string        `koanf:"whatsapp_api_key"`
	WABANumber        string        `koanf:"waba_number"`
	DryRun            bool          `koanf:"dry_run"`
	BroadcastInterval time.Duration `koanf:"broadcast_interval"`
	SettlementReport  bool          `koanf:"broadcast_settlement_report"`

	// API-Football
	APIFootballKey  string `koanf:"api_football_key"`
	APIFootballBase string `koanf:"api_football_base"`
	LeaguesS        []int  `koanf:"leagues_s"`
	LeaguesA        []int  `koanf:"leagues_a"`
	LeaguesB        []int  `koanf:"leagues_b"`

	// AI Providers
	GLMAPIKey string `koanf:"glm_api_key"`
	GLMAPIURL string `koanf:"glm_api_url"`
	GLMModel  string `koanf:"glm_model"`

	DeepSeekAPIKey string `koanf:"deepseek_api_key"`
	DeepSeekAPIURL string `koanf:"deepseek_api_url"`
	DeepSeekModel  string `koanf:"deepseek_model"`

	OpenAIAPIKey string `koanf:"openai_api_key"`
	OpenAIAPIURL string `koanf:"openai_api_url"`
	OpenAIModel  string `koanf:"openai_model"`

	AITimeout time.Duration `koanf:"ai_timeout"`

	// Admin
	AdminPassword      string        `koanf:"admin_password"`
	AdminPasswordHash  string        `koanf:"admin_password_hash"`
	AdminSessionSecret string        `koanf:"admin_session_secret"`
	AdminSessionTTL    time.Duration `koanf:"admin_session_ttl"`
	AdminToken         string        `koanf:"admin_token"`

	// Scheduled jobs
	CronSecret string `koanf:"cron_secret"`

	// Observability
	SentryDSN        string `koanf:"sentry_dsn"`
	LogRetentionDays int    `koanf:"log_retention_days"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Port:        "8080",
		AppEnv:      "development",
		CORSOrigins: "*",

		DBHost:    "localhost",
		DBPort:    "5432",
		DBUser:    "postgres",
		DBName:    "palpites",
		DBSSLMode: "disable",

		CacheTTL: 10 * time.Minute,

		WhatsAppAPIURL:    "https://waba-v2.360dialog.io/messages",
		DryRun:            true,
		BroadcastInterval: 1200 * time.Millisecond,
		SettlementReport:  true,

		APIFootballBase: "https://v3.football.api-sports.io",
		LeaguesS:        []int{2, 39, 140, 135, 78, 61},
		LeaguesA:        []int{88, 207, 103, 253, 152, 113, 94, 144},
		LeaguesB:        []int{71, 72, 262, 235},

		GLMAPIURL: "https://api.z.ai/api/paas/v4/chat/completions",
		GLMModel:  "glm-5",

		DeepSeekAPIURL: "https://api.deepseek.com/v1/chat/completions",
		DeepSeekModel:  "deepseek-chat",

		OpenAIAPIURL: "https://api.openai.com/v1/chat/completions",
		OpenAIModel:  "gpt-4.1",

		AITimeout: 60 * time.Second,

		AdminSessionTTL: 7 * 24 * time.Hour,

		LogRetentionDays: 30,
	}
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// DatabaseConfigured reports whether enough is set to reach Postgres.
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != "" || c.DBPassword != ""
}

// PriceIDs maps each checkout plan to its Stripe price id. Unset prices map to "".
func (c *Config) PriceIDs() map[string]string {
	return map[string]string{
		PlanFootballMonthly:   c.StripePriceFootballMonthly,
		PlanFootballQuarterly: c.StripePriceFootballQuarterly,
		PlanFootballYearly:    c.StripePriceFootballYearly,
		PlanComboMonthly:      c.StripePriceComboMonthly,
		PlanComboQuarterly:    c.StripePriceComboQuarterly,
		PlanComboYearly:       c.StripePriceComboYearly,
	}
}

// PriorityLeagues returns tier S, A and B league ids in that order.
func (c *Config) PriorityLeagues() []int {
	out := make([]int, 0, len(c.LeaguesS)+len(c.LeaguesA)+len(c.LeaguesB))
	out = append(out, c.LeaguesS...)
	out = append(out, c.LeaguesA...)
	out = append(out, c.LeaguesB...)
	return out
}

// AdminConfigured reports whether admin login can succeed.
func (c *Config) AdminConfigured() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}

// AdminSigningKey is the HMAC key for admin session tokens.
func (c *Config) AdminSigningKey() []byte {
	if c.AdminSessionSecret != "" {
		return []byte(c.AdminSessionSecret)
	}
	if c.AdminPasswordHash != "" {
		return []byte("admin-session:" + c.AdminPasswordHash)
	}
	if c.AdminPassword != "" {
		return []byte("admin-session:" + c.AdminPassword)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port must not be empty", ErrInvalidConfig)
	}
	if c.BroadcastInterval < 0 {
		return fmt.Errorf("%w: broadcast_interval must not be negative", ErrInvalidConfig)
	}
	if c.LogRetentionDays <= 0 {
		return fmt.Errorf("%w: log_retention_days must be positive", ErrInvalidConfig)
	}
	return nil
}
