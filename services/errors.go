package services

import "errors"

// Denial reason codes, safe to surface to the client verbatim.
const (
	ReasonAlreadyCheckedIn    = "ALREADY_CHECKED_IN"
	ReasonDailyAdLimit        = "DAILY_AD_LIMIT"
	ReasonHourlyAdLimit       = "HOURLY_AD_LIMIT"
	ReasonChannelClaimed      = "CHANNEL_ALREADY_CLAIMED"
	ReasonNotChannelMember    = "NOT_CHANNEL_MEMBER"
	ReasonAdNotConfirmed      = "AD_NOT_CONFIRMED"
	ReasonAdTokenUsed         = "AD_CONFIRMATION_REUSED"
	ReasonAlreadyReferred     = "ALREADY_REFERRED"
	ReasonSelfReferral        = "SELF_REFERRAL"
	ReasonUnknownCode         = "UNKNOWN_REFERRAL_CODE"
	ReasonUnknownMethod       = "UNKNOWN_WITHDRAW_METHOD"
	ReasonInvalidRecipient    = "INVALID_RECIPIENT"
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonAlreadyResolved     = "ALREADY_RESOLVED"
)

// DeniedError is a business-rule rejection. It is never retried
// automatically and maps to a 4xx response.
type DeniedError struct {
	Reason  string
	Message string
}

func (e *DeniedError) Error() string { return e.Message }

func denied(reason, message string) *DeniedError {
	return &DeniedError{Reason: reason, Message: message}
}

// AsDenied unwraps a DeniedError if err carries one.
func AsDenied(err error) (*DeniedError, bool) {
	var de *DeniedError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ErrConflict signals a lost compare-and-set race. The caller may retry the
// same action against fresh state.
var ErrConflict = errors.New("concurrent update conflict")
