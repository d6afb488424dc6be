package adapter

import (
	"context"
	"fmt"

	"github.com/portfolio-tracker/internal/types"
)

// BalanceFetcher defines the interface for chain-specific native balance lookups
type BalanceFetcher interface {
	// FetchNativeBalance returns the native-coin holding of an already validated address.
	// Returns an error wrapping ErrProviderUnavailable if the chain's RPC endpoint
	// cannot answer within the configured timeout.
	FetchNativeBalance(ctx context.Context, address types.Address) (*types.NativeBalance, error)

	// GetChainID returns the chain identifier
	GetChainID() types.ChainID

	// GetHealth returns the health of the adapter's RPC provider
	GetHealth() *ProviderHealth
}

// Common error types for chain adapters

var (
	// ErrProviderUnavailable indicates the data provider is unavailable
	ErrProviderUnavailable = fmt.Errorf("data provider unavailable")

	// ErrChainNotConfigured indicates an enabled chain has no RPC endpoint
	ErrChainNotConfigured = fmt.Errorf("chain not configured")

	// ErrInvalidResponse indicates the upstream answered with an unusable payload
	ErrInvalidResponse = fmt.Errorf("invalid upstream response")
)

// AdapterError wraps errors with additional context
type AdapterError struct {
	Chain   types.ChainID
	Op      string // Operation that failed (e.g., "FetchNativeBalance")
	Err     error
	Details map[string]interface{}
}

func (e *AdapterError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("chain adapter error [%s:%s]: %v (details: %+v)", e.Chain, e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("chain adapter error [%s:%s]: %v", e.Chain, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError creates a new AdapterError
func NewAdapterError(chain types.ChainID, op string, err error, details map[string]interface{}) *AdapterError {
	return &AdapterError{
		Chain:   chain,
		Op:      op,
		Err:     err,
		Details: details,
	}
}
