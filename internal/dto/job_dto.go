package dto

import (
	"time"

	"github.com/google/uuid"
)

type ComboCounts struct {
	Strategic int `json:"strategic"`
	Bold      int `json:"bold"`
}

type PicksResult struct {
	Success bool        `json:"success"`
	Total   int         `json:"total"`
	Combos  ComboCounts `json:"combos"`
	Message string      `json:"message"`
}

// MatchSummary is one fixture covered by a generated narrative.
type MatchSummary struct {
	ID     int64  `json:"id"`
	League string `json:"league"`
	Home   string `json:"home"`
	Away   string `json:"away"`
	Date   string `json:"date,omitempty"`
}

type ContentResult struct {
	Success bool      `json:"success"`
	ID      uuid.UUID `json:"id"`
	Source  string    `json:"source"`
	Matches int       `json:"matches"`
	Preview string    `json:"preview"`
}

// DeliveryStats counts the outcome of one paced delivery run.
type DeliveryStats struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type BroadcastResult struct {
	Success          bool       `json:"success"`
	Reason           string     `json:"reason,omitempty"`
	ContentCreatedAt *time.Time `json:"content_created_at,omitempty"`
	DeliveryStats
	Preview string `json:"preview,omitempty"`
}

type ReportResult struct {
	Success bool    `json:"success"`
	Kind    string  `json:"kind"`
	Picks   int     `json:"picks"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pending int     `json:"pending"`
	HitRate float64 `json:"hit_rate"`
	DeliveryStats
	Preview string `json:"preview,omitempty"`
}

type JobFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
