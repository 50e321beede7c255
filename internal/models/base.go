package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID assigns a UUID primary key when the caller did not set one.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (l *Lead) BeforeCreate(_ *gorm.DB) error         { newID(&l.ID); return nil }
func (s *Subscriber) BeforeCreate(_ *gorm.DB) error   { newID(&s.ID); return nil }
func (p *Pick) BeforeCreate(_ *gorm.DB) error         { newID(&p.ID); return nil }
func (d *DailyPick) BeforeCreate(_ *gorm.DB) error    { newID(&d.ID); return nil }
func (s *SendLog) BeforeCreate(_ *gorm.DB) error      { newID(&s.ID); return nil }
func (w *WebhookEvent) BeforeCreate(_ *gorm.DB) error { newID(&w.ID); return nil }
func (s *SystemLog) BeforeCreate(_ *gorm.DB) error    { newID(&s.ID); return nil }

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Lead{},
		&Subscriber{},
		&Pick{},
		&DailyPick{},
		&SendLog{},
		&WebhookEvent{},
		&SystemLog{},
	}
}
