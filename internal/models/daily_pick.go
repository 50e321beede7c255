package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DailyPick is one generated narrative and the fixtures it covers.
type DailyPick struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	Matches   datatypes.JSON `json:"matches"`
	Source    string         `gorm:"size:20" json:"source"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
