package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onramp-labs/backend/internal/client"
	"github.com/onramp-labs/backend/pkg/api"
	"github.com/onramp-labs/backend/pkg/testutil"
)

func Test_bridgeConversionGateway_InitiateTransfer(t *testing.T) {
	ctx := testutil.MockContext()

	headers := map[string]string{}
	var sentBody api.Body
	generator := &api.MockAPIGenerator{}
	generator.MockClient = api.MockAPIClient{
		HeaderFunc: func(name, value string) api.Client {
			headers[name] = value
			return &generator.MockClient
		},
		BodyFunc: func(body api.Body) api.Client {
			sentBody = body
			return &generator.MockClient
		},
		POSTFunc: func(context.Context, ...api.Opt) (*api.Response, error) {
			return &api.Response{
				Code: http.StatusCreated,
				Body: api.JSON{
					"id":            "transfer_1",
					"state":         client.TransferStateAwaitingFunds,
					"amount":        "108.50",
					"exchange_rate": "1.085",
				},
			}, nil
		},
	}

	gateway := client.NewBridgeConversionGateway(generator, "bridge-key")
	transfer, err := gateway.InitiateTransfer(ctx, client.InitiateTransferRequest{
		Amount:             100,
		SourceCurrency:     "EUR",
		TargetCurrency:     "USDC",
		DestinationAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		IdempotencyKey:     "onramp-tx-1",
	})
	require.NoError(t, err)
	require.Equal(t, "transfer_1", transfer.Reference)
	require.Equal(t, client.TransferStateAwaitingFunds, transfer.State)
	require.Equal(t, 108.5, transfer.TargetAmount)
	require.Equal(t, 1.085, transfer.ExchangeRate)

	// The idempotency key rides on a header, not in the body.
	require.Equal(t, "bridge-key", headers["Api-Key"])
	require.Equal(t, "onramp-tx-1", headers["Idempotency-Key"])

	body, ok := sentBody.(api.JSON)
	require.True(t, ok)
	require.Equal(t, "100.00", body["amount"])
	destination, ok := body["destination"].(api.JSON)
	require.True(t, ok)
	require.Equal(t, "usdc", destination["currency"])
	require.Equal(t, "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", destination["to_address"])
}

func Test_bridgeConversionGateway_GetTransferStatus(t *testing.T) {
	ctx := testutil.MockContext()

	generator := &api.MockAPIGenerator{
		MockClient: api.MockAPIClient{
			GETFunc: func(context.Context, ...api.Opt) (*api.Response, error) {
				return &api.Response{
					Code: http.StatusOK,
					Body: api.JSON{
						"id":    "transfer_1",
						"state": client.TransferStatePaymentProcessed,
						"receipt": api.JSON{
							"destination_tx_hash": "0xdeadbeef",
						},
					},
				}, nil
			},
		},
	}

	gateway := client.NewBridgeConversionGateway(generator, "bridge-key")
	transfer, err := gateway.GetTransferStatus(ctx, "transfer_1")
	require.NoError(t, err)
	require.Equal(t, client.TransferStatePaymentProcessed, transfer.State)
	require.Equal(t, "0xdeadbeef", transfer.SettlementReference)
}

func Test_bridgeConversionGateway_rejectedRequest(t *testing.T) {
	ctx := testutil.MockContext()

	generator := &api.MockAPIGenerator{
		MockClient: api.MockAPIClient{
			POSTFunc: func(context.Context, ...api.Opt) (*api.Response, error) {
				return &api.Response{
					Code: http.StatusUnprocessableEntity,
					Body: api.JSON{"message": "unsupported destination"},
				}, nil
			},
		},
	}

	gateway := client.NewBridgeConversionGateway(generator, "bridge-key")
	_, err := gateway.InitiateTransfer(ctx, client.InitiateTransferRequest{Amount: 100})
	require.Equal(t, "The conversion partner rejected the request", err.Error())
}

func Test_bridgeConversionGateway_notFound(t *testing.T) {
	ctx := testutil.MockContext()

	generator := &api.MockAPIGenerator{
		MockClient: api.MockAPIClient{
			GETFunc: func(context.Context, ...api.Opt) (*api.Response, error) {
				return &api.Response{Code: http.StatusNotFound, Body: api.JSON{}}, nil
			},
		},
	}

	gateway := client.NewBridgeConversionGateway(generator, "bridge-key")
	_, err := gateway.GetTransferStatus(ctx, "transfer_missing")
	require.Equal(t, "Not found the conversion transfer", err.Error())
}
