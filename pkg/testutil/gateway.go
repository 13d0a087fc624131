package testutil

import (
	"context"

	"github.com/onramp-labs/backend/internal/client"
)

type MockPaymentGateway struct {
	CreateIntentFunc    func(ctx context.Context, amount float64, currency string) (*client.PaymentIntent, error)
	GetIntentStatusFunc func(ctx context.Context, reference string) (string, error)
	ConfirmIntentFunc   func(ctx context.Context, reference string) (string, error)
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) CreateIntent(
	ctx context.Context, amount float64, currency string,
) (*client.PaymentIntent, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, amount, currency)
	}

	return &client.PaymentIntent{
		Reference:    "pi_mock",
		ClientSecret: "pi_mock_secret",
		Status:       client.PaymentStatusRequiresPaymentMethod,
		Amount:       amount,
	}, nil
}

func (m *MockPaymentGateway) GetIntentStatus(ctx context.Context, reference string) (string, error) {
	if m.GetIntentStatusFunc != nil {
		return m.GetIntentStatusFunc(ctx, reference)
	}

	return client.PaymentStatusSucceeded, nil
}

func (m *MockPaymentGateway) ConfirmIntent(ctx context.Context, reference string) (string, error) {
	if m.ConfirmIntentFunc != nil {
		return m.ConfirmIntentFunc(ctx, reference)
	}

	return client.PaymentStatusSucceeded, nil
}

type MockConversionGateway struct {
	InitiateTransferFunc  func(ctx context.Context, req client.InitiateTransferRequest) (*client.ConversionTransfer, error)
	GetTransferStatusFunc func(ctx context.Context, reference string) (*client.ConversionTransfer, error)
}

func NewMockConversionGateway() *MockConversionGateway {
	return &MockConversionGateway{}
}

func (m *MockConversionGateway) InitiateTransfer(
	ctx context.Context, req client.InitiateTransferRequest,
) (*client.ConversionTransfer, error) {
	if m.InitiateTransferFunc != nil {
		return m.InitiateTransferFunc(ctx, req)
	}

	return &client.ConversionTransfer{
		Reference:    "transfer_mock",
		State:        client.TransferStateAwaitingFunds,
		TargetAmount: req.Amount,
		ExchangeRate: 1,
	}, nil
}

func (m *MockConversionGateway) GetTransferStatus(
	ctx context.Context, reference string,
) (*client.ConversionTransfer, error) {
	if m.GetTransferStatusFunc != nil {
		return m.GetTransferStatusFunc(ctx, reference)
	}

	return &client.ConversionTransfer{
		Reference: reference,
		State:     client.TransferStateAwaitingFunds,
	}, nil
}
