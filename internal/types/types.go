// Package types provides common type definitions for the portfolio tracker.
package types

import (
	"github.com/shopspring/decimal"
)

// ChainID represents supported blockchain networks
type ChainID string

const (
	// ChainEthereum represents the Ethereum mainnet
	ChainEthereum ChainID = "ethereum"
	// ChainPolygon represents the Polygon PoS network
	ChainPolygon ChainID = "polygon"
	// ChainBSC represents the BNB Smart Chain
	ChainBSC ChainID = "bsc"
	// ChainArbitrum represents the Arbitrum One network
	ChainArbitrum ChainID = "arbitrum"
)

// NativeDecimals is the unit-conversion exponent shared by every chain in scope.
const NativeDecimals int32 = 18

// ChainInfo holds the static description of a supported chain
type ChainInfo struct {
	ID            ChainID `json:"id"`
	Name          string  `json:"name"`
	EVMChainID    uint64  `json:"chainId"`
	NativeSymbol  string  `json:"nativeSymbol"`
	Decimals      int32   `json:"decimals"`
	NativePriceID string  `json:"nativePriceId"` // CoinGecko id of the native coin
}

// supportedChains lists every known chain in canonical order.
var supportedChains = []ChainInfo{
	{ID: ChainEthereum, Name: "Ethereum", EVMChainID: 1, NativeSymbol: "ETH", Decimals: NativeDecimals, NativePriceID: "ethereum"},
	{ID: ChainPolygon, Name: "Polygon", EVMChainID: 137, NativeSymbol: "MATIC", Decimals: NativeDecimals, NativePriceID: "matic-network"},
	{ID: ChainBSC, Name: "BNB Smart Chain", EVMChainID: 56, NativeSymbol: "BNB", Decimals: NativeDecimals, NativePriceID: "binancecoin"},
	{ID: ChainArbitrum, Name: "Arbitrum One", EVMChainID: 42161, NativeSymbol: "ETH", Decimals: NativeDecimals, NativePriceID: "ethereum"},
}

// SupportedChains returns the IDs of all known chains in canonical order
func SupportedChains() []ChainID {
	ids := make([]ChainID, len(supportedChains))
	for i, c := range supportedChains {
		ids[i] = c.ID
	}
	return ids
}

// LookupChain returns the static description of a chain
func LookupChain(id ChainID) (ChainInfo, bool) {
	for _, c := range supportedChains {
		if c.ID == id {
			return c, true
		}
	}
	return ChainInfo{}, false
}

// ParseChainID converts a configuration string into a known ChainID
func ParseChainID(s string) (ChainID, bool) {
	id := ChainID(s)
	_, ok := LookupChain(id)
	return id, ok
}

// NativeBalance is the base-currency holding of an address on one chain
type NativeBalance struct {
	Chain  ChainID         `json:"chain"`
	Amount decimal.Decimal `json:"nativeBalance"`
	Symbol string          `json:"nativeSymbol"`
}

// TokenHolding is a priced balance of one price-feed asset
type TokenHolding struct {
	Name      string          `json:"name"` // price-feed identifier
	Balance   decimal.Decimal `json:"balance"`
	UnitPrice decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
}

// ChainPortfolio aggregates everything held on one chain
type ChainPortfolio struct {
	Chain         ChainID         `json:"chain"`
	NativeBalance NativeBalance   `json:"nativeBalance"`
	NativeValue   decimal.Decimal `json:"nativeValue"`
	Tokens        []TokenHolding  `json:"tokens"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// ChainFailure records why a chain is absent from a portfolio
type ChainFailure struct {
	Chain  ChainID `json:"chain"`
	Code   string  `json:"code"`
	Reason string  `json:"reason"`
}

// ChainResult is the outcome of processing one chain: exactly one of
// Portfolio or Failure is set.
type ChainResult struct {
	Chain     ChainID
	Portfolio *ChainPortfolio
	Failure   *ChainFailure
}

// OK reports whether the chain produced a portfolio entry
func (r ChainResult) OK() bool {
	return r.Portfolio != nil
}

// Portfolio is the multi-chain view of one address
type Portfolio struct {
	Address    string           `json:"address"`
	Chains     []ChainPortfolio `json:"portfolio"`
	Failures   []ChainFailure   `json:"unavailableChains"`
	TotalValue decimal.Decimal  `json:"totalPortfolioValue"`
}

// TransactionDirection is relative to the queried address
type TransactionDirection string

const (
	// DirectionSent means the queried address is the sender
	DirectionSent TransactionDirection = "sent"
	// DirectionReceived means the queried address is the recipient
	DirectionReceived TransactionDirection = "received"
)

// TransactionRecord is a single entry of an address's transaction list
type TransactionRecord struct {
	Hash      string               `json:"hash"`
	From      string               `json:"from"`
	To        string               `json:"to"`
	Value     string               `json:"value"`
	Timestamp int64                `json:"timestamp"` // unix milliseconds
	Direction TransactionDirection `json:"type"`
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
