package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/asearnhub/earnhub-backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Task{}, &models.Withdrawal{}, &models.Referral{}, &models.AdNonce{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func mustCreateUser(t *testing.T, db *gorm.DB, telegramID int64, code string) *models.User {
	t.Helper()

	user := &models.User{
		TelegramID:   telegramID,
		ProfileName:  fmt.Sprintf("User %d", telegramID),
		ReferralCode: code,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, u *models.User) *models.User {
	t.Helper()

	var fresh models.User
	if err := db.First(&fresh, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &fresh
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func assertDenied(t *testing.T, err error, reason string) {
	t.Helper()

	d, ok := AsDenied(err)
	if !ok {
		t.Fatalf("expected denial %s, got %v", reason, err)
	}
	if d.Reason != reason {
		t.Fatalf("expected denial reason %s, got %s", reason, d.Reason)
	}
}
