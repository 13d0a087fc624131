package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/onramp-labs/backend/internal/client"
	"github.com/onramp-labs/backend/internal/common"
	"github.com/onramp-labs/backend/internal/entity"
	"github.com/onramp-labs/backend/internal/model"
	"github.com/onramp-labs/backend/internal/repository"
	"github.com/onramp-labs/backend/pkg/enum"
	"github.com/onramp-labs/backend/pkg/errorx"
	"github.com/onramp-labs/backend/pkg/ethutil"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

const reconcileConcurrency = 8

type OnRampDomain interface {
	Initiate(context.Context, *model.InitiateOnRampRequest) (*model.InitiateOnRampResponse, error)
	ConfirmPayment(context.Context, *model.ConfirmPaymentRequest) (*model.ConfirmPaymentResponse, error)
	GetStatus(context.Context, *model.GetOnRampStatusRequest) (*model.GetOnRampStatusResponse, error)
	GetTransactions(context.Context, *model.GetOnRampTransactionsRequest) (*model.GetOnRampTransactionsResponse, error)

	// ExpireStale marks payment-phase transactions older than the
	// configured expiry as expired. Called by the cron job.
	ExpireStale(context.Context) error
}

type onRampDomain struct {
	onRampRepo        repository.OnRampTransactionRepository
	paymentGateway    client.PaymentGateway
	conversionGateway client.ConversionGateway

	progress progressTable

	// locks serializes mutations per transaction id. Unrelated
	// transactions never contend with each other.
	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewOnRampDomain(
	onRampRepo repository.OnRampTransactionRepository,
	paymentGateway client.PaymentGateway,
	conversionGateway client.ConversionGateway,
) *onRampDomain {
	return &onRampDomain{
		onRampRepo:        onRampRepo,
		paymentGateway:    paymentGateway,
		conversionGateway: conversionGateway,
		progress:          defaultProgressTable(),
		locks:             xsync.NewMapOf[*sync.Mutex](),
	}
}

func (d *onRampDomain) Initiate(
	ctx context.Context, req *model.InitiateOnRampRequest,
) (*model.InitiateOnRampResponse, error) {
	cfg := xcontext.Configs(ctx).OnRamp

	currency := req.Currency
	if currency == "" {
		currency = cfg.SourceCurrency
	}

	if currency != cfg.SourceCurrency {
		return nil, errorx.New(errorx.BadRequest, "Only %s is supported as source currency", cfg.SourceCurrency)
	}

	if req.Amount < cfg.MinAmount || req.Amount > cfg.MaxAmount {
		return nil, errorx.New(errorx.InvalidAmount,
			"The amount must be between %g and %g %s", cfg.MinAmount, cfg.MaxAmount, cfg.SourceCurrency)
	}

	if !ethutil.IsValidAddress(req.DestinationAddress) {
		return nil, errorx.New(errorx.InvalidAddress, "Invalid destination address format")
	}

	intent, err := d.paymentGateway.CreateIntent(ctx, req.Amount, currency)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the payment authorization: %v", err)
		return nil, err
	}

	now := time.Now()
	tx := &entity.OnRampTransaction{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Amount:             req.Amount,
		SourceCurrency:     currency,
		TargetCurrency:     cfg.TargetCurrency,
		DestinationAddress: ethutil.NormalizeAddress(req.DestinationAddress),
		Status:             entity.OnRampStatusInitiated,
		Phase:              entity.OnRampPhasePayment,
		PaymentReference:   intent.Reference,
		Note:               req.Note,
		StatusHistory: entity.Array[entity.StatusEvent]{
			{
				Status:    entity.OnRampStatusInitiated,
				Phase:     entity.OnRampPhasePayment,
				Timestamp: now,
				Note:      "Payment authorization requested",
			},
		},
	}

	d.applyTransition(ctx, tx, candidate{
		status: entity.OnRampStatusPaymentPending,
		phase:  entity.OnRampPhasePayment,
		note:   "Awaiting card payment",
	})

	if err := d.onRampRepo.Create(ctx, tx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the on-ramp transaction: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("On-ramp %s initiated for %g %s", tx.ID, tx.Amount, tx.SourceCurrency)

	return &model.InitiateOnRampResponse{
		TransactionID:    tx.ID,
		PaymentReference: tx.PaymentReference,
		ClientSecret:     intent.ClientSecret,
		Amount:           tx.Amount,
		Currency:         tx.SourceCurrency,
		Status:           string(tx.Status),
		Progress:         d.progress.Of(tx),
	}, nil
}

func (d *onRampDomain) ConfirmPayment(
	ctx context.Context, req *model.ConfirmPaymentRequest,
) (*model.ConfirmPaymentResponse, error) {
	tx, err := d.findTransaction(ctx, req)
	if err != nil {
		return nil, err
	}

	// Late or duplicate deliveries are a no-op, not an error. Once the
	// conversion is underway the conversion partner is never called again
	// for this transaction.
	if tx.Status.IsTerminal() || tx.ConversionReference.Valid {
		xcontext.Logger(ctx).Infof("Ignore duplicate payment confirmation of %s in status %s", tx.ID, tx.Status)
		return &model.ConfirmPaymentResponse{Transaction: model.ConvertOnRampTransaction(tx, d.progress.Of(tx))}, nil
	}

	status, err := d.paymentGateway.GetIntentStatus(ctx, tx.PaymentReference)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the payment status of %s: %v", tx.ID, err)
		return nil, err
	}

	outcome := mapPaymentStatus(ctx, status)
	if (outcome == paymentOutcomePending || outcome == paymentOutcomeNeedsAction) &&
		xcontext.Configs(ctx).Env == "sandbox" {
		status, err = d.paymentGateway.ConfirmIntent(ctx, tx.PaymentReference)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot force-confirm the payment of %s: %v", tx.ID, err)
			return nil, err
		}

		outcome = mapPaymentStatus(ctx, status)
	}

	if outcome == paymentOutcomeFailed {
		if _, ferr := d.mutate(ctx, tx.ID, func(tx *entity.OnRampTransaction) error {
			d.applyTransition(ctx, tx, candidate{
				status: entity.OnRampStatusFailed,
				phase:  entity.OnRampPhasePayment,
				note:   fmt.Sprintf("Payment ended in status %s", status),
			})
			return nil
		}); ferr != nil {
			xcontext.Logger(ctx).Errorf("Cannot record the payment failure of %s: %v", tx.ID, ferr)
		}

		return nil, errorx.New(errorx.PaymentFailed, "The payment was canceled or declined")
	}

	if outcome != paymentOutcomeCaptured {
		return nil, errorx.New(errorx.PaymentNotConfirmed, "The payment is not confirmed yet (%s)", status)
	}

	tx, err = d.mutate(ctx, tx.ID, func(tx *entity.OnRampTransaction) error {
		if tx.Status.IsTerminal() || tx.ConversionReference.Valid {
			return nil
		}

		d.applyTransition(ctx, tx, candidate{
			status: entity.OnRampStatusPaymentConfirmed,
			phase:  entity.OnRampPhasePayment,
			note:   "Payment captured",
		})
		d.applyTransition(ctx, tx, candidate{
			status: entity.OnRampStatusConversionPending,
			phase:  entity.OnRampPhaseConversion,
			note:   "Queued for crypto conversion",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tx.ConversionReference.Valid {
		return &model.ConfirmPaymentResponse{Transaction: model.ConvertOnRampTransaction(tx, d.progress.Of(tx))}, nil
	}

	// The partner call happens outside of the critical section. The
	// deterministic idempotency key guarantees that a raced or retried
	// confirmation never creates a second transfer.
	transfer, err := d.conversionGateway.InitiateTransfer(ctx, client.InitiateTransferRequest{
		Amount:             tx.Amount,
		SourceCurrency:     tx.SourceCurrency,
		TargetCurrency:     tx.TargetCurrency,
		DestinationAddress: tx.DestinationAddress,
		IdempotencyKey:     conversionIdempotencyKey(tx.ID),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot initiate the conversion of %s: %v", tx.ID, err)

		if _, ferr := d.mutate(ctx, tx.ID, func(tx *entity.OnRampTransaction) error {
			d.applyTransition(ctx, tx, candidate{
				status: entity.OnRampStatusFailed,
				phase:  entity.OnRampPhaseConversion,
				note:   fmt.Sprintf("Cannot initiate the crypto conversion: %v", err),
			})
			return nil
		}); ferr != nil {
			xcontext.Logger(ctx).Errorf("Cannot record the conversion failure of %s: %v", tx.ID, ferr)
		}

		return nil, errorx.New(errorx.ConversionFailed, "Cannot initiate the crypto conversion")
	}

	tx, err = d.mutate(ctx, tx.ID, func(tx *entity.OnRampTransaction) error {
		if tx.Status.IsTerminal() {
			return nil
		}

		if !tx.ConversionReference.Valid {
			tx.ConversionReference = sqlNullString(transfer.Reference)
			if transfer.TargetAmount > 0 {
				tx.TargetAmount = sqlNullFloat(transfer.TargetAmount)
			}
			if transfer.ExchangeRate > 0 {
				tx.ExchangeRate = sqlNullFloat(transfer.ExchangeRate)
			}
			tx.UpdatedAt = time.Now()
		}

		d.applyTransition(ctx, tx, candidate{
			status: entity.OnRampStatusConversionInProgress,
			phase:  entity.OnRampPhaseConversion,
			note:   "Crypto conversion initiated",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	xcontext.Logger(ctx).Infof("Conversion initiated for on-ramp %s (transfer %s)", tx.ID, transfer.Reference)

	return &model.ConfirmPaymentResponse{Transaction: model.ConvertOnRampTransaction(tx, d.progress.Of(tx))}, nil
}

func (d *onRampDomain) GetStatus(
	ctx context.Context, req *model.GetOnRampStatusRequest,
) (*model.GetOnRampStatusResponse, error) {
	tx, err := d.onRampRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.TransactionNotFound, "Not found the on-ramp transaction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get the on-ramp transaction: %v", err)
		return nil, errorx.Unknown
	}

	// Status reads stay available even when the conversion partner is
	// degraded: reconciliation is best effort here.
	reconciled, err := d.reconcile(ctx, tx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot reconcile the on-ramp transaction %s: %v", tx.ID, err)
	} else {
		tx = reconciled
	}

	return &model.GetOnRampStatusResponse{
		Transaction: model.ConvertOnRampTransaction(tx, d.progress.Of(tx)),
	}, nil
}

func (d *onRampDomain) GetTransactions(
	ctx context.Context, req *model.GetOnRampTransactionsRequest,
) (*model.GetOnRampTransactionsResponse, error) {
	var status entity.OnRampStatusType
	if req.Status != "" {
		var err error
		status, err = enum.ToEnum[entity.OnRampStatusType](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status filter %s", req.Status)
		}
	}

	txs, err := d.onRampRepo.GetAll(ctx, status)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get on-ramp transactions: %v", err)
		return nil, errorx.Unknown
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(reconcileConcurrency)
	for i := range txs {
		if !txs[i].ConversionReference.Valid || txs[i].Status.IsTerminal() {
			continue
		}

		i := i
		eg.Go(func() error {
			reconciled, err := d.reconcile(egCtx, &txs[i])
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot reconcile the on-ramp transaction %s: %v", txs[i].ID, err)
				return nil
			}

			txs[i] = *reconciled
			return nil
		})
	}

	// Reconciliations never return an error, they only log.
	eg.Wait()

	converted := []model.OnRampTransaction{}
	for i := range txs {
		converted = append(converted, model.ConvertOnRampTransaction(&txs[i], d.progress.Of(&txs[i])))
	}

	return &model.GetOnRampTransactionsResponse{
		Transactions: converted,
		Count:        len(converted),
	}, nil
}

func (d *onRampDomain) ExpireStale(ctx context.Context) error {
	expiry := xcontext.Configs(ctx).OnRamp.TransactionExpiry
	stale, err := d.onRampRepo.GetPendingOlderThan(ctx, time.Now().Add(-expiry))
	if err != nil {
		return err
	}

	for i := range stale {
		_, err := d.mutate(ctx, stale[i].ID, func(tx *entity.OnRampTransaction) error {
			d.applyTransition(ctx, tx, candidate{
				status: entity.OnRampStatusExpired,
				phase:  tx.Phase,
				note:   fmt.Sprintf("Transaction aged out after %s without a payment", expiry),
			})
			return nil
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot expire the on-ramp transaction %s: %v", stale[i].ID, err)
			continue
		}

		xcontext.Logger(ctx).Infof("On-ramp transaction %s expired", stale[i].ID)
	}

	return nil
}

// reconcile polls the conversion partner and applies the mapped status
// through the monotonicity guard. It is a pure read for transactions
// without a conversion reference, and safe to call repeatedly and
// concurrently for the same transaction.
func (d *onRampDomain) reconcile(
	ctx context.Context, tx *entity.OnRampTransaction,
) (*entity.OnRampTransaction, error) {
	if !tx.ConversionReference.Valid || tx.Status.IsTerminal() {
		return tx, nil
	}

	transfer, err := d.conversionGateway.GetTransferStatus(ctx, tx.ConversionReference.String)
	if err != nil {
		return nil, err
	}

	mapped := mapTransferState(ctx, transfer.State)

	return d.mutate(ctx, tx.ID, func(tx *entity.OnRampTransaction) error {
		// The settlement reference is only meaningful once the payout is
		// confirmed on-chain; partners may report a hash earlier.
		if mapped.status == entity.OnRampStatusCompleted &&
			transfer.SettlementReference != "" && !tx.SettlementReference.Valid {
			tx.SettlementReference = sqlNullString(transfer.SettlementReference)
			tx.UpdatedAt = time.Now()
		}

		if transfer.TargetAmount > 0 && !tx.TargetAmount.Valid {
			tx.TargetAmount = sqlNullFloat(transfer.TargetAmount)
			tx.UpdatedAt = time.Now()
		}

		if transfer.ExchangeRate > 0 && !tx.ExchangeRate.Valid {
			tx.ExchangeRate = sqlNullFloat(transfer.ExchangeRate)
			tx.UpdatedAt = time.Now()
		}

		d.applyTransition(ctx, tx, candidate(mapped))
		return nil
	})
}

type candidate struct {
	status entity.OnRampStatusType
	phase  entity.OnRampPhaseType
	note   string
}

// applyTransition applies a candidate (status, phase) through the
// monotonicity guard and appends one history entry if it is accepted.
// Callers hold the per-transaction lock for persisted transactions.
func (d *onRampDomain) applyTransition(ctx context.Context, tx *entity.OnRampTransaction, c candidate) bool {
	if !canTransition(tx.Status, c.status) {
		if tx.Status.IsTerminal() && tx.Status != c.status {
			xcontext.Logger(ctx).Infof(
				"Skip transition of terminal on-ramp transaction %s (%s -> %s)", tx.ID, tx.Status, c.status)
		}
		return false
	}

	now := time.Now()
	tx.Status = c.status
	tx.Phase = c.phase
	tx.UpdatedAt = now
	tx.StatusHistory = append(tx.StatusHistory, entity.StatusEvent{
		Status:    c.status,
		Phase:     c.phase,
		Timestamp: now,
		Note:      c.note,
	})

	common.PromCounters[common.OnRampTransitionTotal].WithLabelValues(string(c.status)).Inc()
	return true
}

// canTransition reports whether the state machine accepts candidate from
// current. The ranking makes re-delivered and stale statuses a no-op.
func canTransition(current, cand entity.OnRampStatusType) bool {
	if current.IsTerminal() {
		return false
	}

	if cand == entity.OnRampStatusFailed || cand == entity.OnRampStatusExpired {
		return true
	}

	return entity.OnRampStatusRank(cand) > entity.OnRampStatusRank(current)
}

// mutate runs fn on a freshly-read copy of the transaction while holding
// its per-id lock, and persists the result if fn mutated it.
func (d *onRampDomain) mutate(
	ctx context.Context, id string, fn func(tx *entity.OnRampTransaction) error,
) (*entity.OnRampTransaction, error) {
	lock, _ := d.locks.LoadOrStore(id, &sync.Mutex{})
	lock.Lock()
	defer lock.Unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	tx, err := d.onRampRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.TransactionNotFound, "Not found the on-ramp transaction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get the on-ramp transaction: %v", err)
		return nil, errorx.Unknown
	}

	before := tx.UpdatedAt
	if err := fn(tx); err != nil {
		return nil, err
	}

	if !tx.UpdatedAt.Equal(before) {
		if err := d.onRampRepo.Update(ctx, tx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update the on-ramp transaction: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return tx, nil
}

func (d *onRampDomain) findTransaction(
	ctx context.Context, req *model.ConfirmPaymentRequest,
) (*entity.OnRampTransaction, error) {
	var tx *entity.OnRampTransaction
	var err error
	switch {
	case req.TransactionID != "":
		tx, err = d.onRampRepo.GetByID(ctx, req.TransactionID)
	case req.PaymentReference != "":
		tx, err = d.onRampRepo.GetByPaymentReference(ctx, req.PaymentReference)
	default:
		return nil, errorx.New(errorx.BadRequest, "Need a transaction id or a payment reference")
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.TransactionNotFound, "Not found the on-ramp transaction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get the on-ramp transaction: %v", err)
		return nil, errorx.Unknown
	}

	return tx, nil
}

func conversionIdempotencyKey(transactionID string) string {
	return "onramp-" + transactionID
}
