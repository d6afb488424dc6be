package service

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"github.com/portfolio-tracker/internal/adapter"
	"github.com/portfolio-tracker/internal/types"
)

func TestPortfolioTotalsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	prices := newStaticPrices(map[string]float64{
		"ethereum":      2000.25,
		"matic-network": 0.71,
		"binancecoin":   301.5,
		"usd-coin":      1,
		"tether":        0.9998,
		"chainlink":     14.2,
	})

	build := func(ethWei, maticWei, bnbWei int64, seed uint64) *types.Portfolio {
		adapters := map[types.ChainID]adapter.BalanceFetcher{
			types.ChainEthereum: &fakeFetcher{chain: types.ChainEthereum, amount: decimal.New(ethWei, -18)},
			types.ChainPolygon:  &fakeFetcher{chain: types.ChainPolygon, amount: decimal.New(maticWei, -18)},
			types.ChainBSC:      &fakeFetcher{chain: types.ChainBSC, amount: decimal.New(bnbWei, -18)},
		}
		tokens := NewMockTokenProvider(prices, MockTokenConfig{
			Enabled:    true,
			MaxBalance: 10,
			Random:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		})
		svc := NewPortfolioService(PortfolioServiceConfig{
			Chains:   defaultChains,
			Adapters: adapters,
			Tokens:   tokens,
			Prices:   prices,
		})

		portfolio, err := svc.BuildPortfolio(context.Background(), deadAddress)
		if err != nil {
			return nil
		}
		return portfolio
	}

	// Property: the portfolio total is the exact sum of the chain totals
	properties.Property("portfolio total sums chain totals", prop.ForAll(
		func(ethWei, maticWei, bnbWei int64, seed uint64) bool {
			portfolio := build(ethWei, maticWei, bnbWei, seed)
			if portfolio == nil || len(portfolio.Chains) != 3 {
				return false
			}
			sum := decimal.Zero
			for _, chain := range portfolio.Chains {
				sum = sum.Add(chain.TotalValue)
			}
			return sum.Equal(portfolio.TotalValue)
		},
		gen.Int64Range(0, 1<<62), gen.Int64Range(0, 1<<62), gen.Int64Range(0, 1<<62), gen.UInt64(),
	))

	// Property: every chain total is its native value plus its token values, none negative
	properties.Property("chain total sums native and token values", prop.ForAll(
		func(ethWei, maticWei, bnbWei int64, seed uint64) bool {
			portfolio := build(ethWei, maticWei, bnbWei, seed)
			if portfolio == nil {
				return false
			}
			for _, chain := range portfolio.Chains {
				sum := chain.NativeValue
				for _, token := range chain.Tokens {
					if token.Value.IsNegative() {
						return false
					}
					sum = sum.Add(token.Value)
				}
				if !sum.Equal(chain.TotalValue) || chain.TotalValue.IsNegative() {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 1<<62), gen.Int64Range(0, 1<<62), gen.Int64Range(0, 1<<62), gen.UInt64(),
	))

	properties.TestingRun(t)
}
