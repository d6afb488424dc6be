package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/portfolio-tracker/internal/types"
)

// TokenHoldingProvider supplies the non-native holdings of an address on one chain
type TokenHoldingProvider interface {
	FetchTokenHoldings(ctx context.Context, address types.Address, chain types.ChainID) []types.TokenHolding
}

// commonTokens lists the price-feed ids shown per chain
var commonTokens = map[types.ChainID][]string{
	types.ChainEthereum: {"ethereum", "usd-coin", "tether", "chainlink", "uniswap"},
	types.ChainPolygon:  {"matic-network", "usd-coin", "tether"},
	types.ChainBSC:      {"binancecoin", "usd-coin", "tether"},
}

var defaultTokens = []string{"ethereum"}

// CommonTokens returns the price-feed ids listed for chain
func CommonTokens(chain types.ChainID) []string {
	if ids, ok := commonTokens[chain]; ok {
		return ids
	}
	return defaultTokens
}

// MockTokenProvider fabricates token holdings with random balances and real prices.
// It stands in for on-chain token discovery, which is not implemented.
type MockTokenProvider struct {
	prices     PriceLookup
	rng        *lockedSource
	maxBalance decimal.Decimal
	enabled    bool
}

// MockTokenConfig holds configuration for the mock token provider
type MockTokenConfig struct {
	Enabled    bool
	MaxBalance float64      // balances are drawn from [0, MaxBalance)
	Random     RandomSource // nil means a time-seeded source
}

// NewMockTokenProvider creates a new mock token provider
func NewMockTokenProvider(prices PriceLookup, cfg MockTokenConfig) *MockTokenProvider {
	return &MockTokenProvider{
		prices:     prices,
		rng:        newLockedSource(cfg.Random),
		maxBalance: decimal.NewFromFloat(cfg.MaxBalance),
		enabled:    cfg.Enabled,
	}
}

// FetchTokenHoldings returns one holding per common token of chain.
// Balances are random and truncated to 8 places; value is balance times the USD
// price, or zero when the price is unknown.
func (p *MockTokenProvider) FetchTokenHoldings(ctx context.Context, _ types.Address, chain types.ChainID) []types.TokenHolding {
	holdings := []types.TokenHolding{}
	if !p.enabled {
		return holdings
	}

	ids := CommonTokens(chain)
	prices := p.prices.FetchPrices(ctx, ids)

	for _, id := range ids {
		balance := decimal.NewFromFloat(p.rng.Float64()).Mul(p.maxBalance).Truncate(8)
		price := prices[id]
		holdings = append(holdings, types.TokenHolding{
			Name:      id,
			Balance:   balance,
			UnitPrice: price,
			Value:     balance.Mul(price),
		})
	}

	return holdings
}
