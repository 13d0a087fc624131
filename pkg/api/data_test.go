package api

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSON_Get(t *testing.T) {
	body, err := bytesToJSON([]byte(`{
		"id": "transfer_1",
		"amount": "108.50",
		"count": 3,
		"receipt": {"destination_tx_hash": "0xabc"}
	}`))
	require.NoError(t, err)

	id, err := body.GetString("id")
	require.NoError(t, err)
	require.Equal(t, "transfer_1", id)

	count, err := body.GetInt("count")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Dot paths walk into nested objects.
	hash, err := body.GetString("receipt.destination_tx_hash")
	require.NoError(t, err)
	require.Equal(t, "0xabc", hash)

	_, err = body.GetString("receipt.missing")
	require.Error(t, err)
	require.Equal(t, "", body.OptionalString("receipt.missing"))

	_, err = body.GetInt("amount")
	require.Error(t, err)
}

func TestParameter_Encode(t *testing.T) {
	p := Parameter{
		"currency": "eur",
		"amount":   "100",
		"note":     "a b&c",
	}

	require.Equal(t, "amount=100&currency=eur&note=a%20b%26c", p.Encode())

	reader, contentType, err := p.ToReader()
	require.NoError(t, err)
	require.Equal(t, "application/x-www-form-urlencoded", contentType)

	b, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "amount=100&currency=eur&note=a%20b%26c", string(b))
}
