package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asearnhub/earnhub-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService applies approved decisions as atomic read-modify-write
// transactions: the user's balance/counter deltas and the appended Task or
// Withdrawal record commit together or not at all. Every user update is a
// compare-and-set on the row version, so a lost race surfaces as ErrConflict
// instead of a partial write.
type LedgerService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// saveUser persists the mutated snapshot guarded by the version it was read
// at. Also the single enforcement point for the non-negative balance
// invariant: a negative balance is a programming error, not a denial.
func saveUser(tx *gorm.DB, u *models.User, now time.Time) error {
	if u.Balance < 0 {
		return fmt.Errorf("invariant violation: balance %0.2f below zero for user %s", u.Balance, u.ID)
	}
	res := tx.Model(&models.User{}).
		Where("id = ? AND version = ?", u.ID, u.Version).
		Updates(map[string]interface{}{
			"balance":               u.Balance,
			"total_earned":          u.TotalEarned,
			"total_tasks_completed": u.TotalTasksCompleted,
			"streak_day":            u.StreakDay,
			"last_checkin_at":       u.LastCheckinAt,
			"daily_ad_count":        u.DailyAdCount,
			"hourly_ad_count":       u.HourlyAdCount,
			"last_ad_task_at":       u.LastAdTaskAt,
			"referrals_count":       u.ReferralsCount,
			"referred_by_id":        u.ReferredByID,
			"last_seen_at":          now,
			"version":               u.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	u.Version++
	return nil
}

func findByRequestID(tx *gorm.DB, requestID string) (*models.Task, error) {
	if requestID == "" {
		return nil, nil
	}
	var task models.Task
	err := tx.Where("request_id = ?", requestID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func optionalID(requestID string) *string {
	if requestID == "" {
		return nil
	}
	return &requestID
}

type CheckinResult struct {
	Reward    float64 `json:"reward"`
	StreakDay int     `json:"streak_day"`
	Balance   float64 `json:"balance"`
	Replayed  bool    `json:"replayed,omitempty"`
}

// CheckIn claims the daily check-in for the user. requestID may be empty; if
// set, a retry after an ambiguous outcome returns the original result.
func (s *LedgerService) CheckIn(ctx context.Context, userID uuid.UUID, requestID string) (*CheckinResult, error) {
	now := s.now()
	var result *CheckinResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if prev, err := findByRequestID(tx, requestID); err != nil {
			return err
		} else if prev != nil {
			// Reward and streak day are the original outcome, recovered from
			// the task row; the balance is always the live value.
			day := user.StreakDay
			fmt.Sscanf(prev.Reference, "Day %d Check-in", &day)
			result = &CheckinResult{Reward: prev.RewardPoints, StreakDay: day, Balance: user.Balance, Replayed: true}
			return nil
		}

		decision, err := DecideCheckin(&user, now)
		if err != nil {
			return err
		}
		decision.Apply(&user, now)

		if err := saveUser(tx, &user, now); err != nil {
			return err
		}
		task := models.Task{
			OwnerID:      user.ID,
			Kind:         models.TaskKindCheckin,
			RewardPoints: decision.Reward,
			Reference:    fmt.Sprintf("Day %d Check-in", decision.Day),
			Status:       models.TaskStatusCompleted,
			RequestID:    optionalID(requestID),
			CreatedAt:    now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		result = &CheckinResult{Reward: decision.Reward, StreakDay: decision.Day, Balance: user.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type AdViewResult struct {
	Reward        float64 `json:"reward"`
	Balance       float64 `json:"balance"`
	DailyAdCount  int     `json:"daily_ad_count"`
	HourlyAdCount int     `json:"hourly_ad_count"`
	Replayed      bool    `json:"replayed,omitempty"`
}

// ViewAd credits one confirmed ad view. The caller must have validated the
// ad network's confirmation token before calling; the nonce it was signed
// over is consumed here, so one signature is worth exactly one credit.
func (s *LedgerService) ViewAd(ctx context.Context, userID uuid.UUID, adZone, nonce, requestID string) (*AdViewResult, error) {
	now := s.now()
	var result *AdViewResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if prev, err := findByRequestID(tx, requestID); err != nil {
			return err
		} else if prev != nil {
			result = &AdViewResult{
				Reward: prev.RewardPoints, Balance: user.Balance,
				DailyAdCount: user.DailyAdCount, HourlyAdCount: user.HourlyAdCount,
				Replayed: true,
			}
			return nil
		}

		if nonce == "" {
			return denied(ReasonAdNotConfirmed, "ad completion carries no confirmation nonce")
		}
		var used int64
		if err := tx.Model(&models.AdNonce{}).Where("nonce = ?", nonce).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return denied(ReasonAdTokenUsed, "this ad confirmation was already credited")
		}

		decision, err := DecideAdView(&user, now)
		if err != nil {
			return err
		}
		decision.Apply(&user, now)

		if err := saveUser(tx, &user, now); err != nil {
			return err
		}
		// The unique index backs the count check above: a concurrent replay
		// fails this insert and rolls the whole credit back.
		if err := tx.Create(&models.AdNonce{UserID: user.ID, Nonce: nonce, CreatedAt: now}).Error; err != nil {
			return err
		}
		task := models.Task{
			OwnerID:      user.ID,
			Kind:         models.TaskKindAd,
			RewardPoints: decision.Reward,
			Reference:    adZone,
			Status:       models.TaskStatusCompleted,
			RequestID:    optionalID(requestID),
			CreatedAt:    now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		result = &AdViewResult{
			Reward: decision.Reward, Balance: user.Balance,
			DailyAdCount: user.DailyAdCount, HourlyAdCount: user.HourlyAdCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type ChannelJoinResult struct {
	Reward   float64 `json:"reward"`
	Balance  float64 `json:"balance"`
	Replayed bool    `json:"replayed,omitempty"`
}

// JoinChannel credits a verified channel join, once per channel link. The
// caller must have confirmed actual membership with the bot first.
func (s *LedgerService) JoinChannel(ctx context.Context, userID uuid.UUID, channelLink, requestID string) (*ChannelJoinResult, error) {
	now := s.now()
	var result *ChannelJoinResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if prev, err := findByRequestID(tx, requestID); err != nil {
			return err
		} else if prev != nil {
			result = &ChannelJoinResult{Reward: prev.RewardPoints, Balance: user.Balance, Replayed: true}
			return nil
		}

		var claimed int64
		err := tx.Model(&models.Task{}).
			Where("owner_id = ? AND kind = ? AND reference = ? AND status = ?",
				userID, models.TaskKindTgJoin, channelLink, models.TaskStatusCompleted).
			Count(&claimed).Error
		if err != nil {
			return err
		}

		decision, err := DecideChannelJoin(claimed > 0)
		if err != nil {
			return err
		}
		decision.Apply(&user)

		if err := saveUser(tx, &user, now); err != nil {
			return err
		}
		task := models.Task{
			OwnerID:      user.ID,
			Kind:         models.TaskKindTgJoin,
			RewardPoints: decision.Reward,
			Reference:    channelLink,
			Status:       models.TaskStatusCompleted,
			RequestID:    optionalID(requestID),
			CreatedAt:    now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		result = &ChannelJoinResult{Reward: decision.Reward, Balance: user.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type ReferralSubmitResult struct {
	Reward     float64   `json:"reward"`
	Balance    float64   `json:"balance"`
	ReferrerID uuid.UUID `json:"referrer_id"`
	Replayed   bool      `json:"replayed,omitempty"`
}

// SubmitReferral records who referred this user and pays the immediate
// joining bonus. The referrer's own bonus stays deferred until the
// reconciler sees the activity threshold met.
func (s *LedgerService) SubmitReferral(ctx context.Context, userID uuid.UUID, code, requestID string) (*ReferralSubmitResult, error) {
	now := s.now()
	var result *ReferralSubmitResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if prev, err := findByRequestID(tx, requestID); err != nil {
			return err
		} else if prev != nil {
			referrerID := uuid.Nil
			if user.ReferredByID != nil {
				referrerID = *user.ReferredByID
			}
			result = &ReferralSubmitResult{Reward: prev.RewardPoints, Balance: user.Balance, ReferrerID: referrerID, Replayed: true}
			return nil
		}

		var referrer *models.User
		var found models.User
		err := tx.Where("referral_code = ?", code).First(&found).Error
		switch {
		case err == nil:
			referrer = &found
		case errors.Is(err, gorm.ErrRecordNotFound):
			referrer = nil
		default:
			return err
		}

		decision, err := DecideReferralSubmit(&user, referrer)
		if err != nil {
			return err
		}
		decision.Apply(&user, referrer)

		if err := saveUser(tx, &user, now); err != nil {
			return err
		}
		if err := saveUser(tx, referrer, now); err != nil {
			return err
		}

		referral := models.Referral{
			ReferrerID: referrer.ID,
			ReferredID: user.ID,
			Status:     models.ReferralStatusNotEligible,
		}
		if err := tx.Create(&referral).Error; err != nil {
			return err
		}
		task := models.Task{
			OwnerID:      user.ID,
			Kind:         models.TaskKindReferralReceived,
			RewardPoints: decision.Reward,
			Reference:    referrer.ID.String(),
			Status:       models.TaskStatusCompleted,
			RequestID:    optionalID(requestID),
			CreatedAt:    now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		result = &ReferralSubmitResult{Reward: decision.Reward, Balance: user.Balance, ReferrerID: referrer.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type WithdrawalResult struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	AmountPoints float64   `json:"amount_points"`
	Balance      float64   `json:"balance"`
	Replayed     bool      `json:"replayed,omitempty"`
}

// RequestWithdrawal debits the method's fixed cost and records a PENDING
// request for manual fulfillment.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, userID uuid.UUID, method, recipient, requestID string) (*WithdrawalResult, error) {
	now := s.now()
	var result *WithdrawalResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if requestID != "" {
			var prev models.Withdrawal
			err := tx.Where("request_id = ?", requestID).First(&prev).Error
			if err == nil {
				result = &WithdrawalResult{WithdrawalID: prev.ID, AmountPoints: prev.AmountPoints, Balance: user.Balance, Replayed: true}
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		decision, err := DecideWithdrawal(&user, method, recipient)
		if err != nil {
			return err
		}
		decision.Apply(&user)

		if err := saveUser(tx, &user, now); err != nil {
			return err
		}
		withdrawal := models.Withdrawal{
			OwnerID:      user.ID,
			Method:       decision.Method,
			AmountPoints: decision.AmountPoints,
			EstUSDValue:  decision.EstUSDValue,
			Recipient:    decision.Recipient,
			Status:       models.WithdrawalStatusPending,
			RequestID:    optionalID(requestID),
		}
		if err := tx.Create(&withdrawal).Error; err != nil {
			return err
		}
		result = &WithdrawalResult{WithdrawalID: withdrawal.ID, AmountPoints: withdrawal.AmountPoints, Balance: user.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveWithdrawal applies the admin's manual decision to a PENDING
// request. Rejection credits the debited points back in the same
// transaction.
func (s *LedgerService) ResolveWithdrawal(ctx context.Context, withdrawalID uuid.UUID, status, note string) (*models.Withdrawal, error) {
	if status != models.WithdrawalStatusSuccessful && status != models.WithdrawalStatusRejected {
		return nil, fmt.Errorf("unsupported withdrawal resolution %q", status)
	}
	now := s.now()
	var resolved models.Withdrawal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w models.Withdrawal
		if err := tx.First(&w, "id = ?", withdrawalID).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusPending).
			Updates(map[string]interface{}{"status": status, "admin_note": note, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return denied(ReasonAlreadyResolved, "withdrawal is already resolved")
		}

		if status == models.WithdrawalStatusRejected {
			var user models.User
			if err := tx.First(&user, "id = ?", w.OwnerID).Error; err != nil {
				return err
			}
			user.Balance += w.AmountPoints
			if err := saveUser(tx, &user, now); err != nil {
				return err
			}
		}
		return tx.First(&resolved, "id = ?", withdrawalID).Error
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// --- Read paths ---

func (s *LedgerService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LedgerService) ListTasks(ctx context.Context, userID uuid.UUID, limit int) ([]models.Task, error) {
	var tasks []models.Task
	q := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// TodayEarnings sums completed-task rewards per kind since UTC midnight.
type TodayEarnings struct {
	Ads       float64 `json:"ads"`
	Channels  float64 `json:"channels"`
	Referrals float64 `json:"referrals"`
}

func (s *LedgerService) TodayEarnings(ctx context.Context, userID uuid.UUID) (*TodayEarnings, error) {
	dayStart := UTCDayStart(s.now())

	var rows []struct {
		Kind  string
		Total float64
	}
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Select("kind, COALESCE(SUM(reward_points), 0) AS total").
		Where("owner_id = ? AND status = ? AND created_at >= ?", userID, models.TaskStatusCompleted, dayStart).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	earnings := &TodayEarnings{}
	for _, row := range rows {
		switch row.Kind {
		case models.TaskKindAd:
			earnings.Ads = row.Total
		case models.TaskKindTgJoin:
			earnings.Channels = row.Total
		case models.TaskKindReferralEarned:
			earnings.Referrals = row.Total
		}
	}
	return earnings, nil
}

func (s *LedgerService) ListWithdrawals(ctx context.Context, userID uuid.UUID) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (s *LedgerService) ListWithdrawalsByStatus(ctx context.Context, status string) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	q := s.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&withdrawals).Error; err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// CompletedChannelLinks returns the channel references this user already
// claimed, for rendering the task list.
func (s *LedgerService) CompletedChannelLinks(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	var refs []string
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("owner_id = ? AND kind = ? AND status = ?", userID, models.TaskKindTgJoin, models.TaskStatusCompleted).
		Pluck("reference", &refs).Error
	if err != nil {
		return nil, err
	}
	claimed := make(map[string]bool, len(refs))
	for _, ref := range refs {
		claimed[ref] = true
	}
	return claimed, nil
}
