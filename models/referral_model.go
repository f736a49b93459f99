package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReferralStatusNotEligible = "NOT_ELIGIBLE"
	ReferralStatusEligible    = "ELIGIBLE"
	ReferralStatusPaid        = "PAID"
)

// Referral is one (referrer, referred) pair. The unique index on ReferredID
// enforces a single referrer per user and doubles as the idempotency guard:
// the payout flips Status to PAID with a conditional update, so the referrer
// bonus is issued at most once per pair.
type Referral struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReferrerID uuid.UUID `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferredID uuid.UUID `gorm:"type:uuid;not null;unique" json:"referred_id"`
	Status     string    `gorm:"size:20;not null;default:'NOT_ELIGIBLE'" json:"status"`

	RewardPoints float64    `gorm:"type:numeric(12,2);not null;default:0.00" json:"reward_points"`
	PaidAt       *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
