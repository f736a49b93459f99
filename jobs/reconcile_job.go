package jobs

import (
	"context"
	"log"
	"time"

	"github.com/asearnhub/earnhub-backend/services"
)

// ReconcileJob sweeps unpaid referral pairs on a schedule. The reconciler
// tolerates redundant invocation, so this is a pure safety net for payout
// triggers lost between a task commit and the post-commit reconcile call.
type ReconcileJob struct {
	Referrals *services.ReferralService
}

func (j *ReconcileJob) Run() {
	log.Println("Running job: referral reconciliation sweep...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	processed, err := j.Referrals.SweepUnpaid(ctx)
	if err != nil {
		log.Printf("Referral sweep failed: %v", err)
		return
	}
	log.Printf("Referral sweep re-evaluated %d pair(s).", processed)
}
