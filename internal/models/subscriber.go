package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SubscriberActive   = "active"
	SubscriberPastDue  = "past_due"
	SubscriberCanceled = "canceled"
	SubscriberFailed   = "failed"
)

const (
	SportFootball = "futebol"
	SportCombo    = "combo"
)

// Subscriber is a paying contact. Phone holds the canonical 55-prefixed digits
// and is the identity key for every write path.
type Subscriber struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Phone                string    `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	WhatsAppNumber       string    `gorm:"column:whatsapp_number;size:32;index" json:"whatsapp_number"`
	Email                string    `gorm:"size:255;index" json:"email"`
	Name                 string    `gorm:"size:255" json:"name"`
	CPF                  string    `gorm:"size:14" json:"-"`
	Plan                 string    `gorm:"size:50" json:"plan"`
	Sport                string    `gorm:"size:20;not null;default:'futebol'" json:"sport"`
	Status               string    `gorm:"size:20;not null;default:'active';index" json:"status"`
	PaymentMethod        string    `gorm:"size:30" json:"payment_method"`
	WaitingOptIn         bool      `gorm:"column:waiting_optin;not null;default:false" json:"waiting_optin"`
	PendingMessage       *string   `gorm:"type:text" json:"pending_message,omitempty"`
	StripeCustomerID     string    `gorm:"size:255;index" json:"-"`
	StripeSubscriptionID string    `gorm:"size:255;index" json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// SportForPlan derives the delivered sport from a checkout plan name.
func SportForPlan(plan string) string {
	if strings.Contains(strings.ToLower(plan), "combo") {
		return SportCombo
	}
	return SportFootball
}
