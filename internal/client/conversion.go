package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/onramp-labs/backend/internal/common"
	"github.com/onramp-labs/backend/pkg/api"
	"github.com/onramp-labs/backend/pkg/errorx"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

// Transfer states reported by the conversion partner.
const (
	TransferStateAwaitingFunds    = "awaiting_funds"
	TransferStateFundsReceived    = "funds_received"
	TransferStatePaymentSubmitted = "payment_submitted"
	TransferStatePaymentProcessed = "payment_processed"
	TransferStateFailed           = "failed"
)

type InitiateTransferRequest struct {
	Amount             float64
	SourceCurrency     string
	TargetCurrency     string
	DestinationAddress string

	// IdempotencyKey makes retried initiations safe: the partner returns
	// the transfer created by the first delivery of the same key.
	IdempotencyKey string
}

type ConversionTransfer struct {
	Reference           string
	State               string
	TargetAmount        float64
	ExchangeRate        float64
	SettlementReference string
}

type ConversionGateway interface {
	InitiateTransfer(ctx context.Context, req InitiateTransferRequest) (*ConversionTransfer, error)
	GetTransferStatus(ctx context.Context, reference string) (*ConversionTransfer, error)
}

type bridgeConversionGateway struct {
	generator api.Generator
	apiKey    string
}

func NewBridgeConversionGateway(generator api.Generator, apiKey string) *bridgeConversionGateway {
	return &bridgeConversionGateway{
		generator: generator,
		apiKey:    apiKey,
	}
}

func (g *bridgeConversionGateway) InitiateTransfer(
	ctx context.Context, req InitiateTransferRequest,
) (*ConversionTransfer, error) {
	body := api.JSON{
		"amount": strconv.FormatFloat(req.Amount, 'f', 2, 64),
		"source": api.JSON{
			"payment_rail": "sepa",
			"currency":     strings.ToLower(req.SourceCurrency),
		},
		"destination": api.JSON{
			"payment_rail": "ethereum",
			"currency":     strings.ToLower(req.TargetCurrency),
			"to_address":   req.DestinationAddress,
		},
		"features": api.JSON{
			"flexible_amount": true,
		},
	}

	resp, err := g.generator.New("/transfers").
		Header("Api-Key", g.apiKey).
		Header("Idempotency-Key", req.IdempotencyKey).
		Body(body).
		POST(ctx)
	if err != nil {
		common.PromCounters[common.PartnerFailureTotal].WithLabelValues("conversion").Inc()
		return nil, errorx.New(errorx.GatewayUnavailable, "Cannot reach the conversion partner: %v", err)
	}

	return g.parseTransfer(ctx, resp)
}

func (g *bridgeConversionGateway) GetTransferStatus(
	ctx context.Context, reference string,
) (*ConversionTransfer, error) {
	resp, err := g.generator.New("/transfers/%s", reference).
		Header("Api-Key", g.apiKey).
		GET(ctx)
	if err != nil {
		common.PromCounters[common.PartnerFailureTotal].WithLabelValues("conversion").Inc()
		return nil, errorx.New(errorx.GatewayUnavailable, "Cannot reach the conversion partner: %v", err)
	}

	return g.parseTransfer(ctx, resp)
}

func (g *bridgeConversionGateway) parseTransfer(
	ctx context.Context, resp *api.Response,
) (*ConversionTransfer, error) {
	body, err := resp.JSON()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot parse conversion partner response: %v", err)
		return nil, errorx.New(errorx.BadResponse, "Invalid response of the conversion partner")
	}

	if resp.Code == http.StatusNotFound {
		return nil, errorx.New(errorx.NotFound, "Not found the conversion transfer")
	}

	if resp.Code >= 400 {
		msg := body.OptionalString("message")
		xcontext.Logger(ctx).Warnf("Conversion partner rejected the request (%d): %s", resp.Code, msg)
		return nil, errorx.New(errorx.GatewayRejected, "The conversion partner rejected the request")
	}

	reference, err := body.GetString("id")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get transfer id: %v", err)
		return nil, errorx.New(errorx.BadResponse, "Invalid response of the conversion partner")
	}

	state, err := body.GetString("state")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get transfer state: %v", err)
		return nil, errorx.New(errorx.BadResponse, "Invalid response of the conversion partner")
	}

	transfer := &ConversionTransfer{
		Reference:           reference,
		State:               state,
		SettlementReference: body.OptionalString("receipt.destination_tx_hash"),
	}

	// The partner reports amounts as decimal strings and only once known.
	if raw := body.OptionalString("amount"); raw != "" {
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			transfer.TargetAmount = amount
		}
	}

	if raw := body.OptionalString("exchange_rate"); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil {
			transfer.ExchangeRate = rate
		}
	}

	return transfer, nil
}
