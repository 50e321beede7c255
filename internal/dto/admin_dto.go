package dto

import "github.com/palpitesia/palpites-backend/internal/models"

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type SetPickResultRequest struct {
	Result string `json:"result"`
}

// PickStats aggregates settled picks in the dashboard window.
type PickStats struct {
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pending int     `json:"pending"`
	HitRate float64 `json:"hit_rate"`
}

type DashboardResponse struct {
	Subscribers       int64            `json:"subscribers"`
	ActiveSubscribers int64            `json:"active_subscribers"`
	Leads             int64            `json:"leads"`
	Picks             PickStats        `json:"picks"`
	RecentPicks       []models.Pick    `json:"recent_picks"`
	RecentSends       []models.SendLog `json:"recent_sends"`
}

type DiagResponse struct {
	Database      bool            `json:"database"`
	Stripe        bool            `json:"stripe"`
	StripeWebhook bool            `json:"stripe_webhook"`
	WhatsApp      bool            `json:"whatsapp"`
	DryRun        bool            `json:"dry_run"`
	SportsData    bool            `json:"sports_data"`
	LLM           bool            `json:"llm"`
	Redis         bool            `json:"redis"`
	CronSecret    bool            `json:"cron_secret"`
	Prices        map[string]bool `json:"prices"`
}
