package client

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/onramp-labs/backend/internal/common"
	"github.com/onramp-labs/backend/pkg/api"
	"github.com/onramp-labs/backend/pkg/errorx"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

// Payment statuses reported by the card-payment processor.
const (
	PaymentStatusRequiresPaymentMethod = "requires_payment_method"
	PaymentStatusRequiresConfirmation  = "requires_confirmation"
	PaymentStatusRequiresAction        = "requires_action"
	PaymentStatusProcessing            = "processing"
	PaymentStatusRequiresCapture       = "requires_capture"
	PaymentStatusCanceled              = "canceled"
	PaymentStatusSucceeded             = "succeeded"
)

type PaymentIntent struct {
	Reference    string
	ClientSecret string
	Status       string
	Amount       float64
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (*PaymentIntent, error)
	GetIntentStatus(ctx context.Context, reference string) (string, error)

	// ConfirmIntent forces a confirmation with the processor's test payment
	// method. Only used by sandbox flows.
	ConfirmIntent(ctx context.Context, reference string) (string, error)
}

type stripePaymentGateway struct {
	generator  api.Generator
	privateKey string
}

func NewStripePaymentGateway(generator api.Generator, privateKey string) *stripePaymentGateway {
	return &stripePaymentGateway{
		generator:  generator,
		privateKey: privateKey,
	}
}

func (g *stripePaymentGateway) CreateIntent(
	ctx context.Context, amount float64, currency string,
) (*PaymentIntent, error) {
	body := api.Parameter{
		"amount":                             fmt.Sprintf("%d", toMinorUnits(amount)),
		"currency":                           strings.ToLower(currency),
		"automatic_payment_methods[enabled]": "true",
		"metadata[description]":              "crypto on-ramp payment",
	}

	resp, err := g.generator.New("/v1/payment_intents").
		Body(body).
		POST(ctx, api.OAuth2("Bearer", g.privateKey))
	if err != nil {
		common.PromCounters[common.PartnerFailureTotal].WithLabelValues("payment").Inc()
		return nil, errorx.New(errorx.GatewayUnavailable, "Cannot reach the payment processor: %v", err)
	}

	intent, err := g.parseIntent(ctx, resp)
	if err != nil {
		return nil, err
	}

	if intent.ClientSecret == "" {
		xcontext.Logger(ctx).Errorf("Missing client secret in payment processor response")
		return nil, errorx.New(errorx.BadResponse, "Missing client secret in the processor response")
	}

	return intent, nil
}

func (g *stripePaymentGateway) GetIntentStatus(ctx context.Context, reference string) (string, error) {
	resp, err := g.generator.New("/v1/payment_intents/%s", reference).
		GET(ctx, api.OAuth2("Bearer", g.privateKey))
	if err != nil {
		common.PromCounters[common.PartnerFailureTotal].WithLabelValues("payment").Inc()
		return "", errorx.New(errorx.GatewayUnavailable, "Cannot reach the payment processor: %v", err)
	}

	intent, err := g.parseIntent(ctx, resp)
	if err != nil {
		return "", err
	}

	return intent.Status, nil
}

func (g *stripePaymentGateway) ConfirmIntent(ctx context.Context, reference string) (string, error) {
	resp, err := g.generator.New("/v1/payment_intents/%s/confirm", reference).
		Body(api.Parameter{"payment_method": "pm_card_visa"}).
		POST(ctx, api.OAuth2("Bearer", g.privateKey))
	if err != nil {
		common.PromCounters[common.PartnerFailureTotal].WithLabelValues("payment").Inc()
		return "", errorx.New(errorx.GatewayUnavailable, "Cannot reach the payment processor: %v", err)
	}

	intent, err := g.parseIntent(ctx, resp)
	if err != nil {
		return "", err
	}

	return intent.Status, nil
}

func (g *stripePaymentGateway) parseIntent(ctx context.Context, resp *api.Response) (*PaymentIntent, error) {
	body, err := resp.JSON()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot parse payment processor response: %v", err)
		return nil, errorx.New(errorx.BadResponse, "Invalid response of the payment processor")
	}

	if resp.Code == http.StatusNotFound {
		return nil, errorx.New(errorx.NotFound, "Not found the payment authorization")
	}

	if resp.Code >= 400 {
		msg := body.OptionalString("error.message")
		xcontext.Logger(ctx).Warnf("Payment processor rejected the request (%d): %s", resp.Code, msg)
		if resp.Code < 500 && strings.Contains(msg, "No such payment_intent") {
			return nil, errorx.New(errorx.NotFound, "Not found the payment authorization")
		}

		return nil, errorx.New(errorx.GatewayRejected, "The payment processor rejected the request")
	}

	reference, err := body.GetString("id")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get intent id: %v", err)
		return nil, errorx.New(errorx.BadResponse, "Invalid response of the payment processor")
	}

	status, err := body.GetString("status")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get intent status: %v", err)
		return nil, errorx.New(errorx.BadResponse, "Invalid response of the payment processor")
	}

	amount, err := body.GetFloat("amount")
	if err != nil {
		amount = 0
	}

	return &PaymentIntent{
		Reference:    reference,
		ClientSecret: body.OptionalString("client_secret"),
		Status:       status,
		Amount:       fromMinorUnits(amount),
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount float64) float64 {
	return amount / 100
}
