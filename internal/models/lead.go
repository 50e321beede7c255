package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a landing-page form submission. Rows are never updated.
type Lead struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"nome"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Phone     string    `gorm:"size:32;not null" json:"telefone"`
	Plan      string    `gorm:"size:50;not null" json:"plano"`
	Stage     string    `gorm:"size:20;not null;default:'novo'" json:"estado"`
	Status    string    `gorm:"size:20;not null;default:'ativo'" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
