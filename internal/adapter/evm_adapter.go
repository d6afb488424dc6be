package adapter

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"

	"github.com/portfolio-tracker/internal/types"
)

// EVMAdapter implements BalanceFetcher for Ethereum and EVM-compatible chains
type EVMAdapter struct {
	chain      types.ChainInfo
	provider   DataProvider
	timeout    time.Duration
	httpClient *http.Client

	mu        sync.RWMutex
	client    *ethclient.Client
	clientURL string
}

// EVMAdapterConfig holds configuration for creating an EVMAdapter
type EVMAdapterConfig struct {
	// ChainID is the chain identifier. Required.
	ChainID types.ChainID

	// Provider is the data provider for RPC URLs. Required.
	Provider DataProvider

	// Timeout bounds every eth_getBalance call. Default: 5s
	Timeout time.Duration

	// HTTPClient is the transport used for JSON-RPC. Default: a client with Timeout.
	HTTPClient *http.Client
}

// NewEVMAdapter creates a new EVM chain adapter
func NewEVMAdapter(cfg *EVMAdapterConfig) (*EVMAdapter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	chain, ok := types.LookupChain(cfg.ChainID)
	if !ok {
		return nil, NewAdapterError(cfg.ChainID, "NewEVMAdapter", ErrChainNotConfigured, nil)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	a := &EVMAdapter{
		chain:      chain,
		provider:   cfg.Provider,
		timeout:    timeout,
		httpClient: httpClient,
	}

	rpcURL, err := cfg.Provider.GetCurrentURL()
	if err != nil {
		return nil, fmt.Errorf("failed to get RPC URL: %w", err)
	}
	if err := a.connect(rpcURL); err != nil {
		return nil, NewAdapterError(cfg.ChainID, "NewEVMAdapter", err, map[string]interface{}{
			"endpoint": RedactURL(rpcURL),
		})
	}

	return a, nil
}

// connect dials rpcURL and replaces the active client
func (a *EVMAdapter) connect(rpcURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	rpcClient, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(a.httpClient))
	if err != nil {
		return err
	}

	a.mu.Lock()
	old := a.client
	a.client = ethclient.NewClient(rpcClient)
	a.clientURL = rpcURL
	a.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

func (a *EVMAdapter) currentClient() (*ethclient.Client, string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client, a.clientURL
}

// FetchNativeBalance retrieves the native balance of address on this chain.
// A failover-worthy error switches the provider endpoint once and re-issues the call.
func (a *EVMAdapter) FetchNativeBalance(ctx context.Context, address types.Address) (*types.NativeBalance, error) {
	wei, usedURL, err := a.balanceAt(ctx, address)
	if err != nil && shouldFailover(err) && ctx.Err() == nil {
		if a.failover(usedURL) == nil {
			wei, _, err = a.balanceAt(ctx, address)
		}
	}
	if err != nil {
		return nil, NewAdapterError(a.chain.ID, "FetchNativeBalance",
			fmt.Errorf("%w: %s", ErrProviderUnavailable, a.provider.Redact(err.Error())),
			map[string]interface{}{
				"address": address.String(),
			})
	}

	return &types.NativeBalance{
		Chain:  a.chain.ID,
		Amount: WeiToDecimal(wei, a.chain.Decimals),
		Symbol: a.chain.NativeSymbol,
	}, nil
}

func (a *EVMAdapter) balanceAt(ctx context.Context, address types.Address) (*big.Int, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	client, usedURL := a.currentClient()
	if client == nil {
		return nil, usedURL, fmt.Errorf("adapter closed")
	}

	start := time.Now()
	balance, err := client.BalanceAt(callCtx, address.Common(), nil)
	if err != nil {
		a.provider.RecordFailure(err)
		return nil, usedURL, err
	}
	if balance == nil || balance.Sign() < 0 {
		err = ErrInvalidResponse
		a.provider.RecordFailure(err)
		return nil, usedURL, err
	}

	a.provider.RecordSuccess(time.Since(start))
	return balance, usedURL, nil
}

// failover switches the provider away from usedURL unless a concurrent call already did
func (a *EVMAdapter) failover(usedURL string) error {
	current, err := a.provider.GetCurrentURL()
	if err != nil {
		return err
	}
	if current == usedURL {
		if err := a.provider.Failover(); err != nil {
			return err
		}
		if current, err = a.provider.GetCurrentURL(); err != nil {
			return err
		}
	}

	if _, clientURL := a.currentClient(); clientURL == current {
		return nil
	}
	return a.connect(current)
}

// GetChainID returns the chain identifier
func (a *EVMAdapter) GetChainID() types.ChainID {
	return a.chain.ID
}

// GetHealth returns the provider health of this adapter
func (a *EVMAdapter) GetHealth() *ProviderHealth {
	return a.provider.GetHealth()
}

// Close closes the RPC client connection
func (a *EVMAdapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
}

// WeiToDecimal converts a smallest-unit amount into a human amount
func WeiToDecimal(wei *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -decimals)
}

// shouldFailover determines if an error warrants failing over to another provider
func shouldFailover(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Check for rate limit errors
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Check for timeout errors
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	// Check for connection errors and unhealthy gateways
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "502 bad gateway") ||
		strings.Contains(errStr, "503 service unavailable") {
		return true
	}

	return false
}
