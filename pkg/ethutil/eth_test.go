package ethutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidAddress(t *testing.T) {
	require.True(t, IsValidAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"))
	require.True(t, IsValidAddress("0x0000000000000000000000000000000000000000"))

	require.False(t, IsValidAddress(""))
	require.False(t, IsValidAddress("0x"))
	require.False(t, IsValidAddress("71C7656EC7ab88b098defB751B7401B5f6d8976F"))
	require.False(t, IsValidAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976"))
	require.False(t, IsValidAddress("0xZZC7656EC7ab88b098defB751B7401B5f6d8976F"))
	require.False(t, IsValidAddress("bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"))
}

func TestNormalizeAddress(t *testing.T) {
	checksummed := "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	require.Equal(t, checksummed, NormalizeAddress(checksummed))
	require.Equal(t, checksummed, NormalizeAddress("0x71c7656ec7ab88b098defb751b7401b5f6d8976f"))
}
