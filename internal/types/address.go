package types

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress indicates the address is not a canonical EVM account address
var ErrInvalidAddress = errors.New("invalid address format")

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Address is a validated EVM account address, kept as the caller supplied it
type Address string

// ParseAddress validates s as "0x" followed by 40 hex characters.
// A single-case hex body is accepted as is; a mixed-case body must carry a
// valid EIP-55 checksum.
func ParseAddress(s string) (Address, error) {
	if !IsValidAddress(s) {
		return "", ErrInvalidAddress
	}
	return Address(s), nil
}

// IsValidAddress reports whether s passes ParseAddress
func IsValidAddress(s string) bool {
	if !addressPattern.MatchString(s) {
		return false
	}

	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}

	return common.HexToAddress(s).Hex() == s
}

// String returns the address as supplied
func (a Address) String() string {
	return string(a)
}

// Checksum returns the EIP-55 form of the address
func (a Address) Checksum() string {
	return common.HexToAddress(string(a)).Hex()
}

// Common converts the address to the go-ethereum representation
func (a Address) Common() common.Address {
	return common.HexToAddress(string(a))
}
