package cron

import (
	"context"
	"time"

	"github.com/onramp-labs/backend/internal/domain"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

// ExpireTransactionsCronJob ages out transactions that never received a
// payment within the configured expiry window.
type ExpireTransactionsCronJob struct {
	onRampDomain domain.OnRampDomain
}

func NewExpireTransactionsCronJob(onRampDomain domain.OnRampDomain) *ExpireTransactionsCronJob {
	return &ExpireTransactionsCronJob{onRampDomain: onRampDomain}
}

func (job *ExpireTransactionsCronJob) Do(ctx context.Context) {
	if err := job.onRampDomain.ExpireStale(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot expire stale on-ramp transactions: %v", err)
	}
}

func (job *ExpireTransactionsCronJob) RunNow() bool {
	return true
}

func (job *ExpireTransactionsCronJob) Next() time.Time {
	return time.Now().Add(10 * time.Minute)
}
