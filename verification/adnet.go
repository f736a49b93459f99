package verification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// AdConfirmer validates the ad network's completion tokens. The network
// signs "<userID>:<nonce>" with the shared postback secret when a rewarded
// view finishes; the engine refuses ad credit without a valid signature, so
// a client can never self-report a view.
type AdConfirmer struct {
	secret []byte
}

func NewAdConfirmer(secret string) *AdConfirmer {
	return &AdConfirmer{secret: []byte(secret)}
}

func (a *AdConfirmer) sign(userID, nonce string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(userID + ":" + nonce))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token is the network's signature for this view.
func (a *AdConfirmer) Verify(userID, nonce, token string) bool {
	if nonce == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(a.sign(userID, nonce)), []byte(token))
}

// Sign is exposed for the postback test harness.
func (a *AdConfirmer) Sign(userID, nonce string) string {
	return a.sign(userID, nonce)
}
