package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PickResultPending = "pending"
	PickResultWin     = "win"
	PickResultLoss    = "loss"
)

type Pick struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        string    `gorm:"size:20;not null;index" json:"kind"`
	Category    string    `gorm:"size:20;not null" json:"category"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Analysis    string    `gorm:"type:text" json:"analysis"`
	Odd         float64   `gorm:"not null" json:"odd"`
	Confidence  int       `gorm:"not null" json:"confidence"`
	MatchID     int64     `gorm:"index" json:"match_id"`
	League      string    `gorm:"size:255" json:"league"`
	Home        string    `gorm:"size:255" json:"home"`
	Away        string    `gorm:"size:255" json:"away"`
	Result      string    `gorm:"size:10;not null;default:'pending';index" json:"result"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
