package services

import (
	"fmt"
	"regexp"
	"time"

	"github.com/asearnhub/earnhub-backend/models"
)

// Reward policy. Values mirror the live mini-app configuration.
const (
	AdReward      = 0.35
	DailyAdLimit  = 120
	HourlyAdLimit = 15

	ChannelJoinReward = 1.0

	ReferredReward = 5.0
	ReferrerReward = 20.0

	// A referrer is paid only after the referred user completes this many
	// channel joins and ad views.
	ReferralJoinThreshold = 4
	ReferralAdThreshold   = 15
)

// checkinRewards is indexed by streak day (1..7).
var checkinRewards = [8]float64{0, 1, 2, 4, 6, 10, 15, 20}

// CheckinRewardForDay returns the reward for a 1-based streak day.
func CheckinRewardForDay(day int) float64 {
	if day < 1 || day > 7 {
		return 0
	}
	return checkinRewards[day]
}

// The eligibility functions below are pure: they look at a user snapshot and
// the current instant and either return an approved decision or a
// DeniedError. All state changes go through a decision's Apply, invoked by
// LedgerService inside a transaction.

type CheckinDecision struct {
	Day    int
	Reward float64
}

func DecideCheckin(u *models.User, now time.Time) (*CheckinDecision, error) {
	if u.LastCheckinAt != nil && SameUTCDay(*u.LastCheckinAt, now) {
		return nil, denied(ReasonAlreadyCheckedIn, "daily check-in already claimed today")
	}

	day := 1
	if u.LastCheckinAt != nil && IsUTCYesterday(*u.LastCheckinAt, now) {
		day = (u.StreakDay % 7) + 1
	}
	return &CheckinDecision{Day: day, Reward: checkinRewards[day]}, nil
}

func (d *CheckinDecision) Apply(u *models.User, now time.Time) {
	u.Balance += d.Reward
	u.TotalEarned += d.Reward
	u.TotalTasksCompleted++
	u.StreakDay = d.Day
	u.LastCheckinAt = &now
}

type AdViewDecision struct {
	Reward float64

	// Counter values after bucket rollover, before this view is counted.
	dailyCount  int
	hourlyCount int
}

func DecideAdView(u *models.User, now time.Time) (*AdViewDecision, error) {
	daily, hourly := u.DailyAdCount, u.HourlyAdCount
	if u.LastAdTaskAt == nil || !SameUTCDay(*u.LastAdTaskAt, now) {
		daily = 0
		hourly = 0
	} else if !SameUTCHour(*u.LastAdTaskAt, now) {
		hourly = 0
	}

	if daily >= DailyAdLimit {
		return nil, denied(ReasonDailyAdLimit, "daily ad limit reached, try again tomorrow (UTC)")
	}
	if hourly >= HourlyAdLimit {
		return nil, denied(ReasonHourlyAdLimit, "hourly ad limit reached, try again in the next hour (UTC)")
	}
	return &AdViewDecision{Reward: AdReward, dailyCount: daily, hourlyCount: hourly}, nil
}

func (d *AdViewDecision) Apply(u *models.User, now time.Time) {
	u.Balance += d.Reward
	u.TotalEarned += d.Reward
	u.TotalTasksCompleted++
	u.DailyAdCount = d.dailyCount + 1
	u.HourlyAdCount = d.hourlyCount + 1
	u.LastAdTaskAt = &now
}

type ChannelJoinDecision struct {
	Reward float64
}

// DecideChannelJoin is idempotent per channel link: a COMPLETED TG_JOIN task
// with the same reference blocks a second claim.
func DecideChannelJoin(alreadyClaimed bool) (*ChannelJoinDecision, error) {
	if alreadyClaimed {
		return nil, denied(ReasonChannelClaimed, "this channel task is already completed")
	}
	return &ChannelJoinDecision{Reward: ChannelJoinReward}, nil
}

func (d *ChannelJoinDecision) Apply(u *models.User) {
	u.Balance += d.Reward
	u.TotalEarned += d.Reward
	u.TotalTasksCompleted++
}

type ReferralSubmitDecision struct {
	Reward float64
}

// DecideReferralSubmit pays the referred user the immediate joining bonus.
// The referrer's larger bonus is deferred to the reconciler. referrer is nil
// when the supplied code resolved to nobody.
func DecideReferralSubmit(u *models.User, referrer *models.User) (*ReferralSubmitDecision, error) {
	if u.ReferredByID != nil {
		return nil, denied(ReasonAlreadyReferred, "a referral code was already submitted for this account")
	}
	if referrer == nil {
		return nil, denied(ReasonUnknownCode, "referral code not found")
	}
	if referrer.ID == u.ID {
		return nil, denied(ReasonSelfReferral, "you cannot refer yourself")
	}
	return &ReferralSubmitDecision{Reward: ReferredReward}, nil
}

func (d *ReferralSubmitDecision) Apply(u *models.User, referrer *models.User) {
	u.Balance += d.Reward
	u.TotalEarned += d.Reward
	u.ReferredByID = &referrer.ID
	referrer.ReferralsCount++
}

// WithdrawMethodSpec fixes the cost and recipient format of a payout method.
type WithdrawMethodSpec struct {
	AmountPoints   float64
	EstUSDValue    float64
	RecipientValid func(string) bool
}

var (
	binancePayIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{10,20}$`)
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var withdrawMethods = map[string]WithdrawMethodSpec{
	models.WithdrawMethodBinance: {
		AmountPoints:   320,
		EstUSDValue:    0.90,
		RecipientValid: binancePayIDPattern.MatchString,
	},
	models.WithdrawMethodGooglePlay: {
		AmountPoints:   210,
		EstUSDValue:    0.50,
		RecipientValid: emailPattern.MatchString,
	},
}

// WithdrawMethodFor exposes the method table for read paths.
func WithdrawMethodFor(method string) (WithdrawMethodSpec, bool) {
	spec, ok := withdrawMethods[method]
	return spec, ok
}

type WithdrawalDecision struct {
	Method       string
	AmountPoints float64
	EstUSDValue  float64
	Recipient    string
}

func DecideWithdrawal(u *models.User, method, recipient string) (*WithdrawalDecision, error) {
	spec, ok := withdrawMethods[method]
	if !ok {
		return nil, denied(ReasonUnknownMethod, fmt.Sprintf("unsupported withdrawal method %q", method))
	}
	if !spec.RecipientValid(recipient) {
		return nil, denied(ReasonInvalidRecipient, "recipient format is invalid for this method")
	}
	if u.Balance < spec.AmountPoints {
		return nil, denied(ReasonInsufficientBalance, "insufficient AS points for this withdrawal")
	}
	return &WithdrawalDecision{
		Method:       method,
		AmountPoints: spec.AmountPoints,
		EstUSDValue:  spec.EstUSDValue,
		Recipient:    recipient,
	}, nil
}

func (d *WithdrawalDecision) Apply(u *models.User) {
	u.Balance -= d.AmountPoints
}
