package domain

import (
	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/internal/model"
)

const progressTotalSteps = 7

type progressStep struct {
	Step       int
	Percentage int
}

// progressTable maps every forward status to its step out of the seven
// canonical steps. It is immutable configuration data; the domain takes it
// at construction so tests can inject their own.
type progressTable map[entity.OnRampStatusType]progressStep

func defaultProgressTable() progressTable {
	return progressTable{
		entity.OnRampStatusInitiated:            {Step: 1, Percentage: 10},
		entity.OnRampStatusPaymentPending:       {Step: 2, Percentage: 20},
		entity.OnRampStatusPaymentConfirmed:     {Step: 3, Percentage: 40},
		entity.OnRampStatusConversionPending:    {Step: 4, Percentage: 60},
		entity.OnRampStatusConversionInProgress: {Step: 4, Percentage: 60},
		entity.OnRampStatusCryptoConverted:      {Step: 5, Percentage: 80},
		entity.OnRampStatusTransferPending:      {Step: 6, Percentage: 90},
		entity.OnRampStatusCompleted:            {Step: 7, Percentage: 100},
	}
}

// Of derives the caller-facing progress of a transaction. FAILED and
// EXPIRED have no step of their own; they report the last rankable status
// from the history instead of resetting the progress.
func (t progressTable) Of(tx *entity.OnRampTransaction) model.Progress {
	if step, ok := t[tx.Status]; ok {
		return model.Progress{
			CompletedSteps: step.Step,
			TotalSteps:     progressTotalSteps,
			Percentage:     step.Percentage,
		}
	}

	for i := len(tx.StatusHistory) - 1; i >= 0; i-- {
		if step, ok := t[tx.StatusHistory[i].Status]; ok {
			return model.Progress{
				CompletedSteps: step.Step,
				TotalSteps:     progressTotalSteps,
				Percentage:     step.Percentage,
			}
		}
	}

	return model.Progress{CompletedSteps: 1, TotalSteps: progressTotalSteps, Percentage: 10}
}
