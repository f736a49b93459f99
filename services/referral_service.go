package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/asearnhub/earnhub-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralService reconciles the deferred referrer bonus. A pair moves
// NOT_ELIGIBLE -> ELIGIBLE once the referred user's completed task counts
// cross the threshold, and ELIGIBLE -> PAID when the bonus is issued. Both
// transitions are conditional updates, so reconciliation can be triggered
// redundantly (after every task completion and from the cron sweep) without
// ever paying twice.
type ReferralService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// ReconcileFor re-evaluates the referral pair of the given referred user.
// No-op when there is no pair, the threshold is not met, or the bonus was
// already paid.
func (s *ReferralService) ReconcileFor(ctx context.Context, referredID uuid.UUID) error {
	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var referral models.Referral
		err := tx.Where("referred_id = ?", referredID).First(&referral).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if referral.Status == models.ReferralStatusPaid {
			return nil
		}

		var joins, ads int64
		err = tx.Model(&models.Task{}).
			Where("owner_id = ? AND kind = ? AND status = ?", referredID, models.TaskKindTgJoin, models.TaskStatusCompleted).
			Count(&joins).Error
		if err != nil {
			return err
		}
		err = tx.Model(&models.Task{}).
			Where("owner_id = ? AND kind = ? AND status = ?", referredID, models.TaskKindAd, models.TaskStatusCompleted).
			Count(&ads).Error
		if err != nil {
			return err
		}
		if joins < ReferralJoinThreshold || ads < ReferralAdThreshold {
			return nil
		}

		if referral.Status == models.ReferralStatusNotEligible {
			res := tx.Model(&models.Referral{}).
				Where("id = ? AND status = ?", referral.ID, models.ReferralStatusNotEligible).
				Update("status", models.ReferralStatusEligible)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConflict
			}
		}

		var referrer models.User
		if err := tx.First(&referrer, "id = ?", referral.ReferrerID).Error; err != nil {
			return err
		}
		referrer.Balance += ReferrerReward
		referrer.TotalEarned += ReferrerReward
		if err := saveUser(tx, &referrer, now); err != nil {
			return err
		}

		task := models.Task{
			OwnerID:      referrer.ID,
			Kind:         models.TaskKindReferralEarned,
			RewardPoints: ReferrerReward,
			Reference:    referredID.String(),
			Status:       models.TaskStatusCompleted,
			CreatedAt:    now,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		// The guard: only the transaction that wins this flip keeps its
		// payout, any concurrent attempt rolls back above or here.
		res := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ?", referral.ID, models.ReferralStatusEligible).
			Updates(map[string]interface{}{
				"status":        models.ReferralStatusPaid,
				"reward_points": ReferrerReward,
				"paid_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

// SweepUnpaid re-runs reconciliation for every pair not yet paid. Invoked
// from the cron job as a safety net for triggers lost between a task commit
// and the post-commit reconcile call.
func (s *ReferralService) SweepUnpaid(ctx context.Context) (int, error) {
	var referrals []models.Referral
	err := s.db.WithContext(ctx).
		Where("status <> ?", models.ReferralStatusPaid).
		Find(&referrals).Error
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, referral := range referrals {
		if err := s.ReconcileFor(ctx, referral.ReferredID); err != nil {
			log.Printf("referral sweep: reconcile for %s failed: %v", referral.ReferredID, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// ListEarned returns the referrer's paid-out referral bonuses, newest first.
func (s *ReferralService) ListEarned(ctx context.Context, referrerID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", referrerID, models.TaskKindReferralEarned).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
