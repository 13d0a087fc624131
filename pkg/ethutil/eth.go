package ethutil

import (
	"github.com/ethereum/go-ethereum/common"
)

// IsValidAddress reports whether s is a well-formed 0x-prefixed hex address.
func IsValidAddress(s string) bool {
	if len(s) < 2 || s[0:2] != "0x" {
		return false
	}

	return common.IsHexAddress(s)
}

// NormalizeAddress returns the checksummed form of a valid address.
func NormalizeAddress(s string) string {
	return common.HexToAddress(s).Hex()
}
