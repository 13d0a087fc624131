package model

import (
	"time"

	"github.com/onramp-labs/backend/internal/entity"
)

func ConvertOnRampTransaction(tx *entity.OnRampTransaction, progress Progress) OnRampTransaction {
	history := []StatusEvent{}
	for _, event := range tx.StatusHistory {
		history = append(history, StatusEvent{
			Status:    string(event.Status),
			Phase:     string(event.Phase),
			Timestamp: event.Timestamp.Format(time.RFC3339Nano),
			Note:      event.Note,
		})
	}

	return OnRampTransaction{
		ID:                  tx.ID,
		Amount:              tx.Amount,
		SourceCurrency:      tx.SourceCurrency,
		TargetCurrency:      tx.TargetCurrency,
		DestinationAddress:  tx.DestinationAddress,
		Status:              string(tx.Status),
		Phase:               string(tx.Phase),
		PaymentReference:    tx.PaymentReference,
		ConversionReference: tx.ConversionReference.String,
		SettlementReference: tx.SettlementReference.String,
		TargetAmount:        tx.TargetAmount.Float64,
		ExchangeRate:        tx.ExchangeRate.Float64,
		Progress:            progress,
		StatusHistory:       history,
		CreatedAt:           tx.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:           tx.UpdatedAt.Format(time.RFC3339Nano),
	}
}
