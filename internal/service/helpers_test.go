package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portfolio-tracker/internal/adapter"
	"github.com/portfolio-tracker/internal/types"
)

const deadAddress = "0x000000000000000000000000000000000000dEaD"

// fakeFetcher is a BalanceFetcher with a canned answer
type fakeFetcher struct {
	chain  types.ChainID
	amount decimal.Decimal
	err    error
	delay  time.Duration
	panics bool
	calls  int32
}

func (f *fakeFetcher) FetchNativeBalance(ctx context.Context, _ types.Address) (*types.NativeBalance, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.panics {
		panic("rpc client exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, adapter.NewAdapterError(f.chain, "FetchNativeBalance", adapter.ErrProviderUnavailable, nil)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	info, _ := types.LookupChain(f.chain)
	return &types.NativeBalance{Chain: f.chain, Amount: f.amount, Symbol: info.NativeSymbol}, nil
}

func (f *fakeFetcher) GetChainID() types.ChainID { return f.chain }

func (f *fakeFetcher) GetHealth() *adapter.ProviderHealth {
	return &adapter.ProviderHealth{Endpoint: "https://rpc.test", IsHealthy: true}
}

// staticPrices is a PriceLookup over a fixed table
type staticPrices struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  [][]string
}

func newStaticPrices(prices map[string]float64) *staticPrices {
	table := make(map[string]decimal.Decimal, len(prices))
	for id, p := range prices {
		table[id] = decimal.NewFromFloat(p)
	}
	return &staticPrices{prices: table}
}

func (s *staticPrices) FetchPrices(_ context.Context, ids []string) map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ids)

	out := make(map[string]decimal.Decimal)
	for _, id := range ids {
		if p, ok := s.prices[id]; ok {
			out[id] = p
		}
	}
	return out
}

func (s *staticPrices) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// fakeQuoter is a PriceQuoter recording every upstream call
type fakeQuoter struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	err    error
	calls  [][]string
}

func (q *fakeQuoter) QuoteUSD(_ context.Context, ids []string) (map[string]decimal.Decimal, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, append([]string(nil), ids...))
	if q.err != nil {
		return nil, q.err
	}
	return q.prices, nil
}

func (q *fakeQuoter) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}

// fixedRandom returns the same values on every call
type fixedRandom struct {
	f float64
	u uint64
}

func (r fixedRandom) Float64() float64     { return r.f }
func (r fixedRandom) Uint64() uint64       { return r.u }
func (r fixedRandom) Int64N(n int64) int64 { return n / 2 }

// staticTokens returns the same holdings for every chain
type staticTokens struct {
	holdings []types.TokenHolding
	calls    int32
}

func (s *staticTokens) FetchTokenHoldings(_ context.Context, _ types.Address, _ types.ChainID) []types.TokenHolding {
	atomic.AddInt32(&s.calls, 1)
	return s.holdings
}
