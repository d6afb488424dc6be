package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/portfolio-tracker/internal/adapter"
	apperrors "github.com/portfolio-tracker/internal/errors"
	"github.com/portfolio-tracker/internal/logging"
	"github.com/portfolio-tracker/internal/metrics"
	"github.com/portfolio-tracker/internal/types"
)

// PortfolioService aggregates native balances, token holdings and prices across chains
type PortfolioService struct {
	chains      []types.ChainID
	adapters    map[types.ChainID]adapter.BalanceFetcher
	tokens      TokenHoldingProvider
	prices      PriceLookup
	maxParallel int
}

// PortfolioServiceConfig holds the collaborators of the portfolio service
type PortfolioServiceConfig struct {
	// Chains are the enabled chains in output order
	Chains []types.ChainID
	// Adapters has an entry per chain with a configured RPC endpoint
	Adapters map[types.ChainID]adapter.BalanceFetcher
	Tokens   TokenHoldingProvider
	Prices   PriceLookup
	// MaxParallelChains bounds concurrent chain tasks; 0 means len(Chains)
	MaxParallelChains int
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(cfg PortfolioServiceConfig) *PortfolioService {
	maxParallel := cfg.MaxParallelChains
	if maxParallel <= 0 {
		maxParallel = len(cfg.Chains)
	}
	if maxParallel <= 0 {
		maxParallel = 1
	}

	return &PortfolioService{
		chains:      cfg.Chains,
		adapters:    cfg.Adapters,
		tokens:      cfg.Tokens,
		prices:      cfg.Prices,
		maxParallel: maxParallel,
	}
}

// BuildPortfolio validates rawAddress and assembles its portfolio over all enabled chains.
// Unavailable chains are left out and listed in Failures; the only errors are
// InvalidAddress before any outbound call and InternalError on cancellation or a panicking chain task.
func (s *PortfolioService) BuildPortfolio(ctx context.Context, rawAddress string) (*types.Portfolio, error) {
	address, err := types.ParseAddress(rawAddress)
	if err != nil {
		return nil, apperrors.NewInvalidAddressError(rawAddress)
	}

	results := make([]types.ChainResult, len(s.chains))

	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for i, chain := range s.chains {
		g.Go(func() (err error) {
			defer recoverTask(&err, string(chain))
			results[i], err = s.processChain(ctx, address, chain)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError("portfolio aggregation failed", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewInternalError("request cancelled", err)
	}

	portfolio := &types.Portfolio{
		Address:    rawAddress,
		Chains:     []types.ChainPortfolio{},
		Failures:   []types.ChainFailure{},
		TotalValue: decimal.Zero,
	}
	for _, result := range results {
		if result.OK() {
			portfolio.Chains = append(portfolio.Chains, *result.Portfolio)
			portfolio.TotalValue = portfolio.TotalValue.Add(result.Portfolio.TotalValue)
		} else if result.Failure != nil {
			portfolio.Failures = append(portfolio.Failures, *result.Failure)
		}
	}

	return portfolio, nil
}

// processChain fetches the native balance and token holdings of one chain concurrently
func (s *PortfolioService) processChain(ctx context.Context, address types.Address, chain types.ChainID) (types.ChainResult, error) {
	logger := logging.FromContext(ctx).WithField("chain", chain)

	info, known := types.LookupChain(chain)
	fetcher, configured := s.adapters[chain]
	if !known || !configured {
		metrics.ObserveChainFetch(string(chain), metrics.OutcomeNotConfigured, 0)
		catErr := apperrors.NewConfigurationError(string(chain), "no RPC endpoint configured")
		logger.Warn("Chain not configured, skipping")
		return failedChain(chain, catErr), nil
	}

	var (
		native    *types.NativeBalance
		nativeErr error
		tokens    []types.TokenHolding
	)

	start := time.Now()
	var inner errgroup.Group
	inner.Go(func() (err error) {
		defer recoverTask(&err, string(chain)+" native balance")
		native, nativeErr = fetcher.FetchNativeBalance(ctx, address)
		return nil
	})
	inner.Go(func() (err error) {
		defer recoverTask(&err, string(chain)+" token holdings")
		tokens = s.tokens.FetchTokenHoldings(ctx, address, chain)
		return nil
	})
	if err := inner.Wait(); err != nil {
		return types.ChainResult{}, err
	}

	if nativeErr != nil {
		metrics.ObserveChainFetch(string(chain), metrics.OutcomeUnavailable, time.Since(start))
		logger.WithError(nativeErr).Warn("Native balance unavailable, skipping chain")

		if errors.Is(nativeErr, adapter.ErrChainNotConfigured) {
			return failedChain(chain, apperrors.NewConfigurationError(string(chain), "no RPC endpoint configured")), nil
		}
		return failedChain(chain, apperrors.NewUpstreamUnavailableError(string(chain), nativeErr)), nil
	}
	metrics.ObserveChainFetch(string(chain), metrics.OutcomeSuccess, time.Since(start))

	nativePrice, ok := s.prices.FetchPrices(ctx, []string{info.NativePriceID})[info.NativePriceID]
	if !ok {
		// symbol keys are only tried once the price-feed id is unknown
		symbolKey := strings.ToLower(info.NativeSymbol)
		nativePrice = s.prices.FetchPrices(ctx, []string{symbolKey})[symbolKey]
	}

	if tokens == nil {
		tokens = []types.TokenHolding{}
	}

	nativeValue := native.Amount.Mul(nativePrice)
	total := nativeValue
	for _, token := range tokens {
		total = total.Add(token.Value)
	}

	return types.ChainResult{
		Chain: chain,
		Portfolio: &types.ChainPortfolio{
			Chain:         chain,
			NativeBalance: *native,
			NativeValue:   nativeValue,
			Tokens:        tokens,
			TotalValue:    total,
		},
	}, nil
}

func failedChain(chain types.ChainID, catErr *apperrors.CategorizedError) types.ChainResult {
	return types.ChainResult{
		Chain: chain,
		Failure: &types.ChainFailure{
			Chain:  chain,
			Code:   catErr.Code,
			Reason: catErr.Message,
		},
	}
}

// recoverTask turns a panic in a chain task into an error
func recoverTask(err *error, task string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic in %s: %v", task, r)
	}
}

// ChainStatus describes an enabled chain and the health of its RPC provider
type ChainStatus struct {
	types.ChainInfo
	Configured bool                    `json:"configured"`
	Health     *adapter.ProviderHealth `json:"health,omitempty"`
}

// ChainStatuses reports every enabled chain in configured order
func (s *PortfolioService) ChainStatuses() []ChainStatus {
	statuses := make([]ChainStatus, 0, len(s.chains))
	for _, chain := range s.chains {
		info, ok := types.LookupChain(chain)
		if !ok {
			info = types.ChainInfo{ID: chain}
		}

		status := ChainStatus{ChainInfo: info}
		if fetcher, ok := s.adapters[chain]; ok {
			status.Configured = true
			status.Health = fetcher.GetHealth()
		}
		statuses = append(statuses, status)
	}
	return statuses
}
