package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskKindCheckin          = "CHECKIN"
	TaskKindAd               = "AD"
	TaskKindTgJoin           = "TG_JOIN"
	TaskKindReferralEarned   = "REFERRAL_EARNED"
	TaskKindReferralReceived = "REFERRAL_RECEIVED"
)

const TaskStatusCompleted = "COMPLETED"

// Task is an append-only record of a completed point-earning event.
// Rows are created inside the same transaction as the balance update and
// are never mutated afterwards.
type Task struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Kind         string    `gorm:"size:30;not null;index" json:"kind"`
	RewardPoints float64   `gorm:"type:numeric(12,2);not null" json:"reward_points"`
	Reference    string    `gorm:"size:512" json:"reference"`
	Status       string    `gorm:"size:20;not null;default:'COMPLETED'" json:"status"`

	// RequestID is the client-supplied idempotency token. A retry after an
	// ambiguous commit hits the unique index and replays the original result.
	RequestID *string `gorm:"size:64;unique" json:"request_id,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
