package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SendStatusSent   = "sent"
	SendStatusFailed = "failed"
)

const (
	SendKindPicks         = "picks"
	SendKindDailyReport   = "daily_report"
	SendKindMonthlyReport = "monthly_report"
	SendKindResend        = "resend"
)

// SendLog records one finished delivery attempt. Append-only.
type SendLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriberID *uuid.UUID `gorm:"type:uuid;index" json:"subscriber_id"`
	Phone        string     `gorm:"size:20;not null" json:"phone"`
	Message      string     `gorm:"type:text" json:"message"`
	Kind         string     `gorm:"size:20;not null;index" json:"kind"`
	Status       string     `gorm:"size:10;not null;index" json:"status"`
	Error        string     `gorm:"type:text" json:"error,omitempty"`
	SentAt       time.Time  `gorm:"not null;index" json:"sent_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
