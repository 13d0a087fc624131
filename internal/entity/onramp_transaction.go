package entity

import (
	"database/sql"
	"time"

	"golang.org/x/exp/slices"

	"github.com/onramp-labs/backend/pkg/enum"
)

type OnRampStatusType string

var (
	OnRampStatusInitiated            = enum.New(OnRampStatusType("initiated"))
	OnRampStatusPaymentPending       = enum.New(OnRampStatusType("payment_pending"))
	OnRampStatusPaymentConfirmed     = enum.New(OnRampStatusType("payment_confirmed"))
	OnRampStatusConversionPending    = enum.New(OnRampStatusType("conversion_pending"))
	OnRampStatusConversionInProgress = enum.New(OnRampStatusType("conversion_in_progress"))
	OnRampStatusCryptoConverted      = enum.New(OnRampStatusType("crypto_converted"))
	OnRampStatusTransferPending      = enum.New(OnRampStatusType("transfer_pending"))
	OnRampStatusCompleted            = enum.New(OnRampStatusType("completed"))
	OnRampStatusFailed               = enum.New(OnRampStatusType("failed"))
	OnRampStatusExpired              = enum.New(OnRampStatusType("expired"))
)

type OnRampPhaseType string

var (
	OnRampPhasePayment    = enum.New(OnRampPhaseType("payment"))
	OnRampPhaseConversion = enum.New(OnRampPhaseType("conversion"))
	OnRampPhaseTransfer   = enum.New(OnRampPhaseType("transfer"))
	OnRampPhaseCompleted  = enum.New(OnRampPhaseType("completed"))
)

// onRampStatusOrder is the canonical forward order of the state machine.
// FAILED and EXPIRED sit outside of it; they are terminal and reachable
// from any non-terminal status.
var onRampStatusOrder = []OnRampStatusType{
	OnRampStatusInitiated,
	OnRampStatusPaymentPending,
	OnRampStatusPaymentConfirmed,
	OnRampStatusConversionPending,
	OnRampStatusConversionInProgress,
	OnRampStatusCryptoConverted,
	OnRampStatusTransferPending,
	OnRampStatusCompleted,
}

// OnRampStatusRank returns the position of status in the canonical order,
// or -1 for statuses outside of it (FAILED, EXPIRED, unknown).
func OnRampStatusRank(status OnRampStatusType) int {
	return slices.Index(onRampStatusOrder, status)
}

func (s OnRampStatusType) IsTerminal() bool {
	return s == OnRampStatusCompleted || s == OnRampStatusFailed || s == OnRampStatusExpired
}

// PhaseOf returns the phase owning a forward status. Terminal failures keep
// the phase they happened in, so they have no phase of their own here.
func PhaseOf(status OnRampStatusType) OnRampPhaseType {
	switch status {
	case OnRampStatusInitiated, OnRampStatusPaymentPending, OnRampStatusPaymentConfirmed:
		return OnRampPhasePayment
	case OnRampStatusConversionPending, OnRampStatusConversionInProgress, OnRampStatusCryptoConverted:
		return OnRampPhaseConversion
	case OnRampStatusTransferPending:
		return OnRampPhaseTransfer
	case OnRampStatusCompleted:
		return OnRampPhaseCompleted
	}

	return ""
}

// StatusEvent is one entry of the append-only status history.
type StatusEvent struct {
	Status    OnRampStatusType `json:"status"`
	Phase     OnRampPhaseType  `json:"phase"`
	Timestamp time.Time        `json:"timestamp"`
	Note      string           `json:"note,omitempty"`
}

type OnRampTransaction struct {
	Base

	Amount         float64
	SourceCurrency string
	TargetCurrency string

	// DestinationAddress is the checksummed payout address. Immutable after
	// creation.
	DestinationAddress string

	Status OnRampStatusType
	Phase  OnRampPhaseType

	PaymentReference    string `gorm:"index:idx_onramp_transaction_payment_reference,unique"`
	ConversionReference sql.NullString
	SettlementReference sql.NullString

	TargetAmount sql.NullFloat64
	ExchangeRate sql.NullFloat64

	StatusHistory Array[StatusEvent] `gorm:"type:text"`

	Note string
}
