package repository

import (
	"context"
	"time"

	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

type OnRampTransactionRepository interface {
	Create(ctx context.Context, tx *entity.OnRampTransaction) error
	GetByID(ctx context.Context, id string) (*entity.OnRampTransaction, error)
	GetByPaymentReference(ctx context.Context, reference string) (*entity.OnRampTransaction, error)
	GetAll(ctx context.Context, status entity.OnRampStatusType) ([]entity.OnRampTransaction, error)
	Update(ctx context.Context, tx *entity.OnRampTransaction) error
	GetPendingOlderThan(ctx context.Context, cutoff time.Time) ([]entity.OnRampTransaction, error)
}

type onRampTransactionRepository struct{}

func NewOnRampTransactionRepository() *onRampTransactionRepository {
	return &onRampTransactionRepository{}
}

func (r *onRampTransactionRepository) Create(ctx context.Context, tx *entity.OnRampTransaction) error {
	return xcontext.DB(ctx).Create(tx).Error
}

func (r *onRampTransactionRepository) GetByID(ctx context.Context, id string) (*entity.OnRampTransaction, error) {
	var result entity.OnRampTransaction
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *onRampTransactionRepository) GetByPaymentReference(
	ctx context.Context, reference string,
) (*entity.OnRampTransaction, error) {
	var result entity.OnRampTransaction
	err := xcontext.DB(ctx).Take(&result, "payment_reference=?", reference).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *onRampTransactionRepository) GetAll(
	ctx context.Context, status entity.OnRampStatusType,
) ([]entity.OnRampTransaction, error) {
	tx := xcontext.DB(ctx).Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}

	var result []entity.OnRampTransaction
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *onRampTransactionRepository) Update(ctx context.Context, tx *entity.OnRampTransaction) error {
	return xcontext.DB(ctx).
		Model(&entity.OnRampTransaction{}).
		Where("id = ?", tx.ID).
		Updates(map[string]any{
			"status":               tx.Status,
			"phase":                tx.Phase,
			"conversion_reference": tx.ConversionReference,
			"settlement_reference": tx.SettlementReference,
			"target_amount":        tx.TargetAmount,
			"exchange_rate":        tx.ExchangeRate,
			"status_history":       tx.StatusHistory,
			"updated_at":           tx.UpdatedAt,
		}).Error
}

// GetPendingOlderThan returns payment-phase transactions created before the
// cutoff, the candidates for expiry.
func (r *onRampTransactionRepository) GetPendingOlderThan(
	ctx context.Context, cutoff time.Time,
) ([]entity.OnRampTransaction, error) {
	var result []entity.OnRampTransaction
	err := xcontext.DB(ctx).
		Where("status IN (?)", []entity.OnRampStatusType{
			entity.OnRampStatusInitiated,
			entity.OnRampStatusPaymentPending,
		}).
		Where("created_at < ?", cutoff).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
