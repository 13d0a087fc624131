package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onramp-labs/backend/internal/client"
	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/pkg/testutil"
)

func Test_mapPaymentStatus(t *testing.T) {
	ctx := testutil.MockContext()

	require.Equal(t, paymentOutcomeCaptured, mapPaymentStatus(ctx, client.PaymentStatusSucceeded))
	require.Equal(t, paymentOutcomeFailed, mapPaymentStatus(ctx, client.PaymentStatusCanceled))
	require.Equal(t, paymentOutcomePending, mapPaymentStatus(ctx, client.PaymentStatusProcessing))
	require.Equal(t, paymentOutcomeNeedsAction, mapPaymentStatus(ctx, client.PaymentStatusRequiresAction))

	// Unknown processor statuses stay pending instead of failing the
	// transaction.
	require.Equal(t, paymentOutcomePending, mapPaymentStatus(ctx, "some_future_status"))
}

func Test_mapTransferState(t *testing.T) {
	ctx := testutil.MockContext()

	require.Equal(t, entity.OnRampStatusConversionInProgress,
		mapTransferState(ctx, client.TransferStateAwaitingFunds).status)
	require.Equal(t, entity.OnRampStatusTransferPending,
		mapTransferState(ctx, client.TransferStateFundsReceived).status)
	require.Equal(t, entity.OnRampStatusTransferPending,
		mapTransferState(ctx, client.TransferStatePaymentSubmitted).status)
	require.Equal(t, entity.OnRampStatusCompleted,
		mapTransferState(ctx, client.TransferStatePaymentProcessed).status)
	require.Equal(t, entity.OnRampStatusFailed,
		mapTransferState(ctx, client.TransferStateFailed).status)

	// Unknown partner states never resolve to a terminal status.
	unknown := mapTransferState(ctx, "some_future_state")
	require.Equal(t, entity.OnRampStatusConversionInProgress, unknown.status)
	require.False(t, unknown.status.IsTerminal())
}

func Test_canTransition(t *testing.T) {
	// Forward moves are accepted, replays and rollbacks are not.
	require.True(t, canTransition(entity.OnRampStatusInitiated, entity.OnRampStatusPaymentPending))
	require.True(t, canTransition(entity.OnRampStatusPaymentPending, entity.OnRampStatusConversionPending))
	require.False(t, canTransition(entity.OnRampStatusPaymentPending, entity.OnRampStatusPaymentPending))
	require.False(t, canTransition(entity.OnRampStatusConversionPending, entity.OnRampStatusPaymentPending))

	// Any live status may fail or expire.
	require.True(t, canTransition(entity.OnRampStatusTransferPending, entity.OnRampStatusFailed))
	require.True(t, canTransition(entity.OnRampStatusInitiated, entity.OnRampStatusExpired))

	// Terminal statuses accept nothing, not even another terminal one.
	require.False(t, canTransition(entity.OnRampStatusCompleted, entity.OnRampStatusFailed))
	require.False(t, canTransition(entity.OnRampStatusFailed, entity.OnRampStatusExpired))
	require.False(t, canTransition(entity.OnRampStatusExpired, entity.OnRampStatusPaymentConfirmed))
}
