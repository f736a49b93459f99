package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/asearnhub/earnhub-backend/models"
	"github.com/google/uuid"
)

// completeTasks drives the real write paths to record completed joins and
// ads for the user. Callers must keep ads within the hourly limit per clock
// setting.
func completeTasks(t *testing.T, svc *LedgerService, userID uuid.UUID, joins, ads int) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < joins; i++ {
		link := "https://t.me/channel_" + string(rune('a'+i))
		if _, err := svc.JoinChannel(ctx, userID, link, ""); err != nil {
			t.Fatalf("join %d failed: %v", i+1, err)
		}
	}
	for i := 0; i < ads; i++ {
		nonce := fmt.Sprintf("ad-%s-%d", userID, i)
		if _, err := svc.ViewAd(ctx, userID, "zone-1", nonce, ""); err != nil {
			t.Fatalf("ad %d failed: %v", i+1, err)
		}
	}
}

func TestReconcileForNoPairIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewReferralService(db)
	svc.now = fixedClock(noon)

	if err := svc.ReconcileFor(context.Background(), uuid.New()); err != nil {
		t.Fatalf("reconcile without a pair must be a no-op, got %v", err)
	}
}

func TestReconcileForBelowThresholdStaysUnpaid(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	ledger.now = fixedClock(noon)
	refs := NewReferralService(db)
	refs.now = fixedClock(noon)

	referrer := mustCreateUser(t, db, 7001, "ASPIA")
	referred := mustCreateUser(t, db, 7002, "ASQUIN")

	if _, err := ledger.SubmitReferral(context.Background(), referred.ID, "ASPIA", ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// One join short, one ad short: neither leg may pay on its own.
	completeTasks(t, ledger, referred.ID, ReferralJoinThreshold-1, ReferralAdThreshold-1)

	if err := refs.ReconcileFor(context.Background(), referred.ID); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	fresh := reloadUser(t, db, referrer)
	if fresh.Balance != 0 {
		t.Fatalf("referrer paid below threshold: balance %v", fresh.Balance)
	}
	var referral models.Referral
	if err := db.Where("referred_id = ?", referred.ID).First(&referral).Error; err != nil {
		t.Fatalf("pair missing: %v", err)
	}
	if referral.Status != models.ReferralStatusNotEligible {
		t.Fatalf("pair status = %s, want NOT_ELIGIBLE", referral.Status)
	}
}

func TestReconcileForPaysOnceAtThreshold(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	ledger.now = fixedClock(noon)
	refs := NewReferralService(db)
	refs.now = fixedClock(noon)

	referrer := mustCreateUser(t, db, 7003, "ASROSE")
	referred := mustCreateUser(t, db, 7004, "ASSAM")

	if _, err := ledger.SubmitReferral(context.Background(), referred.ID, "ASROSE", ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	completeTasks(t, ledger, referred.ID, ReferralJoinThreshold, ReferralAdThreshold)

	// Triggered after every task in production; twice here must still pay once.
	if err := refs.ReconcileFor(context.Background(), referred.ID); err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	if err := refs.ReconcileFor(context.Background(), referred.ID); err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}

	fresh := reloadUser(t, db, referrer)
	if fresh.Balance != ReferrerReward {
		t.Fatalf("referrer balance = %v, want exactly %v", fresh.Balance, ReferrerReward)
	}
	if fresh.TotalEarned != ReferrerReward {
		t.Fatalf("referrer total earned = %v, want %v", fresh.TotalEarned, ReferrerReward)
	}

	var referral models.Referral
	if err := db.Where("referred_id = ?", referred.ID).First(&referral).Error; err != nil {
		t.Fatalf("pair missing: %v", err)
	}
	if referral.Status != models.ReferralStatusPaid || referral.RewardPoints != ReferrerReward {
		t.Fatalf("pair = status %s reward %v, want PAID %v", referral.Status, referral.RewardPoints, ReferrerReward)
	}
	if referral.PaidAt == nil {
		t.Fatal("PaidAt not stamped")
	}

	var earned int64
	db.Model(&models.Task{}).
		Where("owner_id = ? AND kind = ?", referrer.ID, models.TaskKindReferralEarned).
		Count(&earned)
	if earned != 1 {
		t.Fatalf("REFERRAL_EARNED tasks = %d, want 1", earned)
	}
}

func TestSweepUnpaidPaysEligiblePairs(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	ledger.now = fixedClock(noon)
	refs := NewReferralService(db)
	refs.now = fixedClock(noon)

	referrer := mustCreateUser(t, db, 7005, "ASTESS")
	eligible := mustCreateUser(t, db, 7006, "ASUMA")
	notYet := mustCreateUser(t, db, 7007, "ASVERA")

	for _, id := range []uuid.UUID{eligible.ID, notYet.ID} {
		if _, err := ledger.SubmitReferral(context.Background(), id, "ASTESS", ""); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	completeTasks(t, ledger, eligible.ID, ReferralJoinThreshold, ReferralAdThreshold)

	processed, err := refs.SweepUnpaid(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if processed != 2 {
		t.Fatalf("sweep processed %d pairs, want 2", processed)
	}

	fresh := reloadUser(t, db, referrer)
	if fresh.Balance != ReferrerReward {
		t.Fatalf("referrer balance = %v, want %v for the one eligible pair", fresh.Balance, ReferrerReward)
	}

	var paid, unpaid models.Referral
	if err := db.Where("referred_id = ?", eligible.ID).First(&paid).Error; err != nil {
		t.Fatalf("paid pair missing: %v", err)
	}
	if paid.Status != models.ReferralStatusPaid {
		t.Fatalf("eligible pair status = %s, want PAID", paid.Status)
	}
	if err := db.Where("referred_id = ?", notYet.ID).First(&unpaid).Error; err != nil {
		t.Fatalf("unpaid pair missing: %v", err)
	}
	if unpaid.Status != models.ReferralStatusNotEligible {
		t.Fatalf("inactive pair status = %s, want NOT_ELIGIBLE", unpaid.Status)
	}
}

func TestListEarned(t *testing.T) {
	db := newTestDB(t)
	refs := NewReferralService(db)
	refs.now = fixedClock(noon)

	referrer := mustCreateUser(t, db, 7008, "ASWILL")

	seed := []models.Task{
		{OwnerID: referrer.ID, Kind: models.TaskKindReferralEarned, RewardPoints: 20, Status: models.TaskStatusCompleted, CreatedAt: noon.Add(-time.Hour)},
		{OwnerID: referrer.ID, Kind: models.TaskKindReferralEarned, RewardPoints: 20, Status: models.TaskStatusCompleted, CreatedAt: noon},
		{OwnerID: referrer.ID, Kind: models.TaskKindAd, RewardPoints: 0.35, Status: models.TaskStatusCompleted, CreatedAt: noon},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed task: %v", err)
		}
	}

	earned, err := refs.ListEarned(context.Background(), referrer.ID)
	if err != nil {
		t.Fatalf("list earned: %v", err)
	}
	if len(earned) != 2 {
		t.Fatalf("earned = %d entries, want 2", len(earned))
	}
	if !earned[0].CreatedAt.After(earned[1].CreatedAt) {
		t.Fatal("earned list not newest-first")
	}
}
