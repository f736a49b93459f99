package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TelegramID       int64     `gorm:"not null;uniqueIndex" json:"telegram_id"`
	TelegramUsername *string   `gorm:"size:64" json:"telegram_username"`
	ProfileName      string    `gorm:"size:255" json:"profile_name"`
	PhotoURL         *string   `gorm:"size:512" json:"photo_url"`
	Role             string    `gorm:"size:20;not null;default:'user'" json:"role"`

	ReferralCode string `gorm:"size:40;not null;unique" json:"referral_code"`

	Balance             float64 `gorm:"type:numeric(12,2);not null;default:0.00" json:"balance"`
	TotalEarned         float64 `gorm:"type:numeric(12,2);not null;default:0.00" json:"total_earned"`
	TotalTasksCompleted int     `gorm:"not null;default:0" json:"total_tasks_completed"`

	StreakDay     int        `gorm:"not null;default:0" json:"streak_day"`
	LastCheckinAt *time.Time `json:"last_checkin_at"`

	DailyAdCount  int        `gorm:"not null;default:0" json:"daily_ad_count"`
	HourlyAdCount int        `gorm:"not null;default:0" json:"hourly_ad_count"`
	LastAdTaskAt  *time.Time `json:"last_ad_task_at"`

	ReferralsCount int        `gorm:"not null;default:0" json:"referrals_count"`
	ReferredByID   *uuid.UUID `gorm:"type:uuid" json:"referred_by_id"`

	// Admin accounts authenticate with email/password instead of Telegram.
	Email        *string `gorm:"size:255;unique" json:"email,omitempty"`
	PasswordHash *string `gorm:"size:255" json:"-"`

	// Version guards every balance/counter update (compare-and-set).
	Version int64 `gorm:"not null;default:0" json:"-"`

	LastSeenAt *time.Time `json:"last_seen_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
