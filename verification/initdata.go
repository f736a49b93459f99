package verification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// WebAppUser is the user object embedded in Telegram WebApp init data.
type WebAppUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url"`
}

var (
	ErrInitDataSignature = errors.New("init data signature mismatch")
	ErrInitDataNoUser    = errors.New("init data carries no user")
)

// ParseInitData validates the mini-app's initData string against the bot
// token (per the Telegram WebApp spec: HMAC-SHA256 over the sorted
// data-check string, keyed with HMAC("WebAppData", botToken)) and returns
// the embedded user.
func ParseInitData(initData, botToken string) (*WebAppUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInitDataSignature
	}

	pairs := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, ErrInitDataSignature
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrInitDataNoUser
	}
	var user WebAppUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, ErrInitDataNoUser
	}
	return &user, nil
}
