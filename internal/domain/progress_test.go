package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/internal/model"
)

func Test_progressTable_forwardStatuses(t *testing.T) {
	table := defaultProgressTable()

	// Walking the canonical order never decreases the progress.
	lastStep, lastPercentage := 0, 0
	for _, status := range []entity.OnRampStatusType{
		entity.OnRampStatusInitiated,
		entity.OnRampStatusPaymentPending,
		entity.OnRampStatusPaymentConfirmed,
		entity.OnRampStatusConversionPending,
		entity.OnRampStatusConversionInProgress,
		entity.OnRampStatusCryptoConverted,
		entity.OnRampStatusTransferPending,
		entity.OnRampStatusCompleted,
	} {
		progress := table.Of(&entity.OnRampTransaction{Status: status})
		require.GreaterOrEqual(t, progress.CompletedSteps, lastStep, "status %s", status)
		require.GreaterOrEqual(t, progress.Percentage, lastPercentage, "status %s", status)
		require.Equal(t, progressTotalSteps, progress.TotalSteps)
		lastStep, lastPercentage = progress.CompletedSteps, progress.Percentage
	}

	completed := table.Of(&entity.OnRampTransaction{Status: entity.OnRampStatusCompleted})
	require.Equal(t, model.Progress{CompletedSteps: 7, TotalSteps: 7, Percentage: 100}, completed)
}

func Test_progressTable_terminalFailures(t *testing.T) {
	table := defaultProgressTable()

	// A failed transaction keeps the progress it had reached.
	tx := &entity.OnRampTransaction{
		Status: entity.OnRampStatusFailed,
		StatusHistory: entity.Array[entity.StatusEvent]{
			{Status: entity.OnRampStatusInitiated, Timestamp: time.Now()},
			{Status: entity.OnRampStatusPaymentPending, Timestamp: time.Now()},
			{Status: entity.OnRampStatusPaymentConfirmed, Timestamp: time.Now()},
			{Status: entity.OnRampStatusFailed, Timestamp: time.Now()},
		},
	}
	require.Equal(t, model.Progress{CompletedSteps: 3, TotalSteps: 7, Percentage: 40}, table.Of(tx))

	// Without any rankable history the progress falls back to the first step.
	empty := &entity.OnRampTransaction{Status: entity.OnRampStatusExpired}
	require.Equal(t, model.Progress{CompletedSteps: 1, TotalSteps: 7, Percentage: 10}, table.Of(empty))
}
