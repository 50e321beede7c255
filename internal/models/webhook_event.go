package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent marks a provider event as handled so redeliveries are skipped.
type WebhookEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Provider    string    `gorm:"size:20;not null;uniqueIndex:idx_webhook_provider_event" json:"provider"`
	EventID     string    `gorm:"size:255;not null;uniqueIndex:idx_webhook_provider_event" json:"event_id"`
	EventType   string    `gorm:"size:100;not null" json:"event_type"`
	ProcessedAt time.Time `json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
}
