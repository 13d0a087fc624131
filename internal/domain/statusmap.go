package domain

import (
	"context"

	"github.com/onramp-labs/backend/internal/client"
	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

// paymentOutcome buckets the payment processor vocabulary into what the
// state machine actually distinguishes.
type paymentOutcome int

const (
	paymentOutcomePending paymentOutcome = iota
	paymentOutcomeNeedsAction
	paymentOutcomeCaptured
	paymentOutcomeFailed
)

var paymentOutcomes = map[string]paymentOutcome{
	client.PaymentStatusRequiresPaymentMethod: paymentOutcomeNeedsAction,
	client.PaymentStatusRequiresConfirmation:  paymentOutcomeNeedsAction,
	client.PaymentStatusRequiresAction:        paymentOutcomeNeedsAction,
	client.PaymentStatusProcessing:            paymentOutcomePending,
	client.PaymentStatusRequiresCapture:       paymentOutcomePending,
	client.PaymentStatusCanceled:              paymentOutcomeFailed,
	client.PaymentStatusSucceeded:             paymentOutcomeCaptured,
}

// mapPaymentStatus translates a processor status. Processor vocabularies
// evolve on their own, so an unknown status stays in the pending bucket
// instead of being coerced to a terminal one.
func mapPaymentStatus(ctx context.Context, status string) paymentOutcome {
	outcome, ok := paymentOutcomes[status]
	if !ok {
		xcontext.Logger(ctx).Warnf("Unknown payment processor status %s", status)
		return paymentOutcomePending
	}

	return outcome
}

type mappedTransfer struct {
	status entity.OnRampStatusType
	phase  entity.OnRampPhaseType
	note   string
}

var transferStates = map[string]mappedTransfer{
	client.TransferStateAwaitingFunds: {
		status: entity.OnRampStatusConversionInProgress,
		phase:  entity.OnRampPhaseConversion,
		note:   "Conversion partner is awaiting funds",
	},
	client.TransferStateFundsReceived: {
		status: entity.OnRampStatusTransferPending,
		phase:  entity.OnRampPhaseTransfer,
		note:   "Funds received, payout initiated",
	},
	client.TransferStatePaymentSubmitted: {
		status: entity.OnRampStatusTransferPending,
		phase:  entity.OnRampPhaseTransfer,
		note:   "Payout submitted, awaiting chain confirmation",
	},
	client.TransferStatePaymentProcessed: {
		status: entity.OnRampStatusCompleted,
		phase:  entity.OnRampPhaseCompleted,
		note:   "Payout confirmed on-chain",
	},
	client.TransferStateFailed: {
		status: entity.OnRampStatusFailed,
		phase:  entity.OnRampPhaseConversion,
		note:   "Conversion partner reported a failure",
	},
}

// mapTransferState translates a conversion partner state into a candidate
// (status, phase). Unknown states stay in the in-progress bucket of the
// conversion stage, never in a terminal state.
func mapTransferState(ctx context.Context, state string) mappedTransfer {
	mapped, ok := transferStates[state]
	if !ok {
		xcontext.Logger(ctx).Warnf("Unknown conversion partner state %s", state)
		return mappedTransfer{
			status: entity.OnRampStatusConversionInProgress,
			phase:  entity.OnRampPhaseConversion,
			note:   "Conversion partner reported an unknown state: " + state,
		}
	}

	return mapped
}
