package utils

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/asearnhub/earnhub-backend/models"
	"gorm.io/gorm"
)

const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ReferralCodeFor derives a user's shareable code from their Telegram
// identity: "AS" plus the username stripped to alphanumerics, falling back
// to the numeric id for users without a username.
func ReferralCodeFor(username string, telegramID int64) string {
	part := nonAlnum.ReplaceAllString(username, "")
	if part == "" {
		part = fmt.Sprintf("%d", telegramID)
	}
	return "AS" + part
}

// GenerateUniqueReferralCode returns ReferralCodeFor's value, suffixing
// random characters until the code is unused.
func GenerateUniqueReferralCode(tx *gorm.DB, username string, telegramID int64) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	base := ReferralCodeFor(username, telegramID)

	code := base
	for {
		var count int64
		if err := tx.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
		suffix := make([]byte, 4)
		for i := range suffix {
			suffix[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code = base + string(suffix)
	}
}
