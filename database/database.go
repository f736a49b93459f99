package database

import (
	"fmt"
	"log"

	"github.com/asearnhub/earnhub-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the ledger database. The handle is passed into services
// explicitly; no package-level state.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Withdrawal{},
		&models.Referral{},
		&models.AdNonce{},
	)
}

// SeedAdmin creates the admin account used to resolve withdrawal requests,
// if it does not exist yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		log.Println("Admin credentials not configured, skipping admin seed.")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists.")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	hash := string(hashed)
	admin := models.User{
		TelegramID:   -1, // admin accounts have no Telegram identity
		ProfileName:  "Admin",
		Role:         "admin",
		ReferralCode: "ASADMIN",
		Email:        &email,
		PasswordHash: &hash,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Admin user seeded successfully")
	return nil
}
