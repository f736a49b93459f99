package services

import (
	"context"
	"errors"
	"testing"

	"github.com/asearnhub/earnhub-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestSignInTelegramCreatesThenReuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	svc.now = fixedClock(noon)

	profile := TelegramProfile{
		ID:        8801,
		Username:  "zed",
		FirstName: "Zed",
		LastName:  "Zane",
		PhotoURL:  "https://t.me/i/userpic/zed.jpg",
	}

	created, err := svc.SignInTelegram(context.Background(), profile)
	if err != nil {
		t.Fatalf("first sign-in: %v", err)
	}
	if created.TelegramID != 8801 || created.ProfileName != "Zed Zane" {
		t.Fatalf("created = %+v", created)
	}
	if created.ReferralCode != "ASzed" {
		t.Fatalf("referral code = %q, want ASzed", created.ReferralCode)
	}
	if created.Balance != 0 {
		t.Fatalf("new user balance = %v", created.Balance)
	}

	// Second session resyncs the profile without touching the ledger state.
	db.Model(created).Update("balance", 7.5)
	profile.FirstName = "Zeddicus"
	again, err := svc.SignInTelegram(context.Background(), profile)
	if err != nil {
		t.Fatalf("second sign-in: %v", err)
	}
	if again.ID != created.ID {
		t.Fatal("second sign-in created a new user")
	}
	if again.ProfileName != "Zeddicus Zane" {
		t.Fatalf("profile not resynced: %q", again.ProfileName)
	}
	if again.Balance != 7.5 {
		t.Fatalf("sign-in touched the balance: %v", again.Balance)
	}
	if again.ReferralCode != "ASzed" {
		t.Fatalf("referral code changed to %q", again.ReferralCode)
	}
}

func TestSignInTelegramNoUsernameFallsBackToID(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	svc.now = fixedClock(noon)

	user, err := svc.SignInTelegram(context.Background(), TelegramProfile{ID: 8802, FirstName: "Anon"})
	if err != nil {
		t.Fatalf("sign-in: %v", err)
	}
	if user.ReferralCode != "AS8802" {
		t.Fatalf("referral code = %q, want AS8802", user.ReferralCode)
	}
	if user.TelegramUsername != nil {
		t.Fatal("empty username must stay NULL")
	}
}

func TestSignInTelegramCodeCollisionGetsSuffix(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	svc.now = fixedClock(noon)

	mustCreateUser(t, db, 8803, "ASdup")

	user, err := svc.SignInTelegram(context.Background(), TelegramProfile{ID: 8804, Username: "dup", FirstName: "Dup"})
	if err != nil {
		t.Fatalf("sign-in: %v", err)
	}
	if user.ReferralCode == "ASdup" {
		t.Fatal("collision not resolved")
	}
	if len(user.ReferralCode) != len("ASdup")+4 {
		t.Fatalf("collision code = %q, want base plus 4-char suffix", user.ReferralCode)
	}
}

func TestSignInTelegramHealsLostCodeRace(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	svc.now = fixedClock(noon)

	// A rival sign-up grabs the same code between the availability check and
	// the insert, once. The first attempt fails the unique constraint and the
	// sign-in must recover instead of surfacing the error.
	raced := false
	svc.beforeFirstCreate = func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		rival := models.User{TelegramID: 8806, ProfileName: "Rival", ReferralCode: "ASracer"}
		if err := tx.Create(&rival).Error; err != nil {
			t.Fatalf("seed rival: %v", err)
		}
	}

	user, err := svc.SignInTelegram(context.Background(), TelegramProfile{ID: 8805, Username: "racer", FirstName: "Racer"})
	if err != nil {
		t.Fatalf("sign-in did not recover from the lost race: %v", err)
	}
	if !raced {
		t.Fatal("race was never injected")
	}
	if user.TelegramID != 8805 {
		t.Fatalf("created user = %+v", user)
	}
}

func TestAuthenticateAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hashStr := string(hash)
	email := "admin@example.com"
	admin := mustCreateUser(t, db, -1, "ASADMIN")
	if err := db.Model(admin).Updates(map[string]interface{}{
		"role": "admin", "email": email, "password_hash": hashStr,
	}).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	got, err := svc.AuthenticateAdmin(context.Background(), email, "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != admin.ID {
		t.Fatal("wrong user returned")
	}

	if _, err := svc.AuthenticateAdmin(context.Background(), email, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.AuthenticateAdmin(context.Background(), "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}
