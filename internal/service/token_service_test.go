package service

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-tracker/internal/types"
)

func holdingNames(holdings []types.TokenHolding) []string {
	names := make([]string, 0, len(holdings))
	for _, h := range holdings {
		names = append(names, h.Name)
	}
	return names
}

func TestMockTokenProviderListsCommonTokens(t *testing.T) {
	prices := newStaticPrices(nil)
	provider := NewMockTokenProvider(prices, MockTokenConfig{Enabled: true, MaxBalance: 10, Random: fixedRandom{f: 0.5}})

	tests := []struct {
		chain types.ChainID
		want  []string
	}{
		{types.ChainEthereum, []string{"ethereum", "usd-coin", "tether", "chainlink", "uniswap"}},
		{types.ChainPolygon, []string{"matic-network", "usd-coin", "tether"}},
		{types.ChainBSC, []string{"binancecoin", "usd-coin", "tether"}},
		{types.ChainArbitrum, []string{"ethereum"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.chain), func(t *testing.T) {
			holdings := provider.FetchTokenHoldings(context.Background(), deadAddress, tt.chain)
			assert.Equal(t, tt.want, holdingNames(holdings))
		})
	}
}

func TestMockTokenProviderValuesHoldings(t *testing.T) {
	prices := newStaticPrices(map[string]float64{"matic-network": 0.8, "usd-coin": 1})
	provider := NewMockTokenProvider(prices, MockTokenConfig{Enabled: true, MaxBalance: 10, Random: fixedRandom{f: 0.5}})

	holdings := provider.FetchTokenHoldings(context.Background(), deadAddress, types.ChainPolygon)
	require.Len(t, holdings, 3)
	assert.Equal(t, 1, prices.callCount())

	five := decimal.NewFromInt(5)
	for _, h := range holdings {
		assert.True(t, five.Equal(h.Balance), "balance of %s", h.Name)
	}
	assert.True(t, decimal.NewFromInt(4).Equal(holdings[0].Value))
	assert.True(t, decimal.NewFromInt(5).Equal(holdings[1].Value))

	// tether has no price
	assert.True(t, holdings[2].UnitPrice.IsZero())
	assert.True(t, holdings[2].Value.IsZero())
}

func TestMockTokenProviderDisabled(t *testing.T) {
	prices := newStaticPrices(nil)
	provider := NewMockTokenProvider(prices, MockTokenConfig{Enabled: false, MaxBalance: 10})

	holdings := provider.FetchTokenHoldings(context.Background(), deadAddress, types.ChainEthereum)
	assert.NotNil(t, holdings)
	assert.Empty(t, holdings)
	assert.Zero(t, prices.callCount())
}

func TestMockTokenProviderBalanceRange(t *testing.T) {
	provider := NewMockTokenProvider(newStaticPrices(nil), MockTokenConfig{
		Enabled:    true,
		MaxBalance: 10,
		Random:     rand.New(rand.NewPCG(7, 11)),
	})

	limit := decimal.NewFromInt(10)
	for i := 0; i < 50; i++ {
		for _, h := range provider.FetchTokenHoldings(context.Background(), deadAddress, types.ChainEthereum) {
			assert.False(t, h.Balance.IsNegative())
			assert.True(t, h.Balance.LessThan(limit))
			assert.GreaterOrEqual(t, h.Balance.Exponent(), int32(-8))
		}
	}
}

func TestMockTokenProviderBalanceStaysBelowMax(t *testing.T) {
	provider := NewMockTokenProvider(newStaticPrices(nil), MockTokenConfig{
		Enabled:    true,
		MaxBalance: 10,
		Random:     fixedRandom{f: 0.9999999999},
	})

	for _, h := range provider.FetchTokenHoldings(context.Background(), deadAddress, types.ChainEthereum) {
		assert.True(t, decimal.RequireFromString("9.99999999").Equal(h.Balance), "got %s", h.Balance)
	}
}
