package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/asearnhub/earnhub-backend/models"
	"github.com/asearnhub/earnhub-backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TelegramProfile is the identity the mini-app presents at sign-in, taken
// from validated Telegram WebApp init data.
type TelegramProfile struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	PhotoURL  string
}

// UserService owns user lifecycle: Telegram fetch-or-create sign-in and
// admin password authentication.
type UserService struct {
	db  *gorm.DB
	now func() time.Time

	// Test seam, invoked inside the first-sign-in transaction right before
	// the insert.
	beforeFirstCreate func(tx *gorm.DB)
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SignInTelegram loads the user for this Telegram identity, creating the
// record on first sign-in. Profile fields are resynced on every session;
// balances and counters are never touched here.
//
// A first sign-in can lose a uniqueness race: another session of the same
// account commits first (telegram_id), or an unrelated sign-up takes the
// same referral code between the availability check and the insert. Both
// surface as ErrDuplicatedKey and heal on retry — the next attempt finds
// the winner's row or picks a fresh code.
func (s *UserService) SignInTelegram(ctx context.Context, p TelegramProfile) (*models.User, error) {
	now := s.now()
	profileName := strings.TrimSpace(p.FirstName + " " + p.LastName)

	var user models.User
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			user = models.User{}
			err := tx.Where("telegram_id = ?", p.ID).First(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				code, err := utils.GenerateUniqueReferralCode(tx, p.Username, p.ID)
				if err != nil {
					return err
				}
				user = models.User{
					TelegramID:   p.ID,
					ProfileName:  profileName,
					ReferralCode: code,
					LastSeenAt:   &now,
				}
				if p.Username != "" {
					user.TelegramUsername = &p.Username
				}
				if p.PhotoURL != "" {
					user.PhotoURL = &p.PhotoURL
				}
				if s.beforeFirstCreate != nil {
					s.beforeFirstCreate(tx)
				}
				return tx.Create(&user).Error
			}
			if err != nil {
				return err
			}

			updates := map[string]interface{}{
				"profile_name": profileName,
				"last_seen_at": now,
			}
			if p.Username != "" {
				updates["telegram_username"] = p.Username
			}
			if p.PhotoURL != "" {
				updates["photo_url"] = p.PhotoURL
			}
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return err
			}
			return tx.First(&user, "id = ?", user.ID).Error
		})
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, err
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthenticateAdmin verifies the seeded admin account's email/password pair.
func (s *UserService) AuthenticateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? AND role = ?", email, "admin").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
