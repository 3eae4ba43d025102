package core

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress validates an Ethereum address and returns its canonical
// lowercase hex form. All storage and comparison use this form; the checksum
// casing wallets produce is accepted on input and discarded.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidInput
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}
