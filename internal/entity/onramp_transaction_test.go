package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOnRampStatusRank(t *testing.T) {
	// Every forward status ranks strictly above its predecessor.
	last := -1
	for _, status := range onRampStatusOrder {
		rank := OnRampStatusRank(status)
		require.Greater(t, rank, last, "status %s", status)
		last = rank
	}

	require.Equal(t, -1, OnRampStatusRank(OnRampStatusFailed))
	require.Equal(t, -1, OnRampStatusRank(OnRampStatusExpired))
	require.Equal(t, -1, OnRampStatusRank(OnRampStatusType("unknown")))
}

func TestOnRampStatusType_IsTerminal(t *testing.T) {
	require.True(t, OnRampStatusCompleted.IsTerminal())
	require.True(t, OnRampStatusFailed.IsTerminal())
	require.True(t, OnRampStatusExpired.IsTerminal())

	for _, status := range onRampStatusOrder[:len(onRampStatusOrder)-1] {
		require.False(t, status.IsTerminal(), "status %s", status)
	}
}

func TestArray_ScanValue(t *testing.T) {
	history := Array[StatusEvent]{
		{Status: OnRampStatusInitiated, Phase: OnRampPhasePayment, Timestamp: time.Now().UTC()},
		{Status: OnRampStatusPaymentPending, Phase: OnRampPhasePayment, Timestamp: time.Now().UTC(), Note: "waiting"},
	}

	value, err := history.Value()
	require.NoError(t, err)

	var scanned Array[StatusEvent]
	require.NoError(t, scanned.Scan(value))
	require.Len(t, scanned, 2)
	require.Equal(t, OnRampStatusPaymentPending, scanned[1].Status)
	require.Equal(t, "waiting", scanned[1].Note)

	require.Error(t, scanned.Scan(42))
}
