package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdNonce records a consumed ad-network confirmation. The unique index makes
// every postback signature good for exactly one credit: the row is created in
// the same transaction as the AD task, so a replayed token is refused.
type AdNonce struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Nonce     string    `gorm:"size:64;not null;unique" json:"nonce"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *AdNonce) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
