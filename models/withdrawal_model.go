package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WithdrawMethodBinance    = "BINANCE"
	WithdrawMethodGooglePlay = "GOOGLE_PLAY"
)

const (
	WithdrawalStatusPending    = "PENDING"
	WithdrawalStatusSuccessful = "SUCCESSFUL"
	WithdrawalStatusRejected   = "REJECTED"
)

// Withdrawal is a point-spending request. Points are debited when the row is
// created; the status is resolved later by an admin.
type Withdrawal struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Method       string    `gorm:"size:30;not null" json:"method"`
	AmountPoints float64   `gorm:"type:numeric(12,2);not null" json:"amount_points"`
	EstUSDValue  float64   `gorm:"type:numeric(12,2);not null" json:"est_usd_value"`
	Recipient    string    `gorm:"size:255;not null" json:"recipient"`
	Status       string    `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	AdminNote    string    `gorm:"type:text" json:"admin_note"`

	RequestID *string `gorm:"size:64;unique" json:"request_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Withdrawal) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
