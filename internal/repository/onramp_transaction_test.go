package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/pkg/testutil"
)

func newTestTransaction(status entity.OnRampStatusType) *entity.OnRampTransaction {
	now := time.Now()
	return &entity.OnRampTransaction{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Amount:             100,
		SourceCurrency:     "EUR",
		TargetCurrency:     "USDC",
		DestinationAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Status:             status,
		Phase:              entity.PhaseOf(status),
		PaymentReference:   "pi_" + uuid.NewString(),
		StatusHistory: entity.Array[entity.StatusEvent]{
			{Status: status, Phase: entity.PhaseOf(status), Timestamp: now},
		},
	}
}

func Test_onRampTransactionRepository_CreateAndGet(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewOnRampTransactionRepository()

	tx := newTestTransaction(entity.OnRampStatusPaymentPending)
	require.NoError(t, repo.Create(ctx, tx))

	got, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, tx.PaymentReference, got.PaymentReference)
	require.Len(t, got.StatusHistory, 1)

	got, err = repo.GetByPaymentReference(ctx, tx.PaymentReference)
	require.NoError(t, err)
	require.Equal(t, tx.ID, got.ID)

	_, err = repo.GetByID(ctx, "unknown")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_onRampTransactionRepository_UniquePaymentReference(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewOnRampTransactionRepository()

	tx := newTestTransaction(entity.OnRampStatusPaymentPending)
	require.NoError(t, repo.Create(ctx, tx))

	dup := newTestTransaction(entity.OnRampStatusPaymentPending)
	dup.PaymentReference = tx.PaymentReference
	require.Error(t, repo.Create(ctx, dup))
}

func Test_onRampTransactionRepository_Update(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewOnRampTransactionRepository()

	tx := newTestTransaction(entity.OnRampStatusPaymentPending)
	require.NoError(t, repo.Create(ctx, tx))

	now := time.Now()
	tx.Status = entity.OnRampStatusConversionInProgress
	tx.Phase = entity.OnRampPhaseConversion
	tx.ConversionReference = sql.NullString{String: "transfer_1", Valid: true}
	tx.UpdatedAt = now
	tx.StatusHistory = append(tx.StatusHistory, entity.StatusEvent{
		Status:    entity.OnRampStatusConversionInProgress,
		Phase:     entity.OnRampPhaseConversion,
		Timestamp: now,
	})
	require.NoError(t, repo.Update(ctx, tx))

	got, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, entity.OnRampStatusConversionInProgress, got.Status)
	require.Equal(t, "transfer_1", got.ConversionReference.String)
	require.Len(t, got.StatusHistory, 2)
}

func Test_onRampTransactionRepository_GetAll(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewOnRampTransactionRepository()

	first := newTestTransaction(entity.OnRampStatusPaymentPending)
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, first))

	second := newTestTransaction(entity.OnRampStatusCompleted)
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.GetAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID)
	require.Equal(t, first.ID, all[1].ID)

	completed, err := repo.GetAll(ctx, entity.OnRampStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, second.ID, completed[0].ID)
}

func Test_onRampTransactionRepository_GetPendingOlderThan(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewOnRampTransactionRepository()

	stale := newTestTransaction(entity.OnRampStatusPaymentPending)
	stale.CreatedAt = time.Now().Add(-25 * time.Hour)
	require.NoError(t, repo.Create(ctx, stale))

	fresh := newTestTransaction(entity.OnRampStatusPaymentPending)
	require.NoError(t, repo.Create(ctx, fresh))

	// Old but already past the payment phase, not an expiry candidate.
	converted := newTestTransaction(entity.OnRampStatusConversionInProgress)
	converted.CreatedAt = time.Now().Add(-25 * time.Hour)
	require.NoError(t, repo.Create(ctx, converted))

	pending, err := repo.GetPendingOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, stale.ID, pending[0].ID)
}
