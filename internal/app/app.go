// Package app builds the portfolio tracker services from configuration.
// Both the HTTP server and the CLI start from New.
package app

import (
	"fmt"

	"github.com/portfolio-tracker/internal/adapter"
	"github.com/portfolio-tracker/internal/config"
	"github.com/portfolio-tracker/internal/logging"
	"github.com/portfolio-tracker/internal/service"
	"github.com/portfolio-tracker/internal/storage"
)

// App holds the wired services
type App struct {
	Config       *config.Config
	Logger       *logging.Logger
	Adapters     adapter.ChainAdapters
	Prices       *service.PriceService
	Tokens       *service.MockTokenProvider
	Transactions *service.MockTransactionProvider
	Portfolio    *service.PortfolioService

	closeCache func() error
}

// New validates cfg and wires every service
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cache, closeCache, err := storage.NewPriceCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize price cache: %w", err)
	}
	logger.WithFields(map[string]interface{}{
		"backend": cfg.PriceCache.Backend,
		"ttl":     cfg.PriceCache.TTL.String(),
	}).Info("Price cache initialized")

	quoter := adapter.NewCoinGeckoClient(adapter.CoinGeckoConfig{
		BaseURL: cfg.Prices.BaseURL,
		APIKey:  cfg.Prices.APIKey,
		Timeout: cfg.Upstream.Timeout,
		RPS:     cfg.Prices.RPS,
		Burst:   cfg.Prices.Burst,
	})
	prices := service.NewPriceService(quoter, cache)

	adapters := adapter.NewChainAdapters(cfg.Chains, cfg.Upstream.Timeout, logger)
	if len(adapters) == 0 {
		logger.Warn("No chain adapters initialized - every chain will be reported unavailable")
	}

	tokens := service.NewMockTokenProvider(prices, service.MockTokenConfig{
		Enabled:    cfg.Mock.TokensEnabled,
		MaxBalance: cfg.Mock.MaxTokenBalance,
	})
	transactions := service.NewMockTransactionProvider(service.MockTransactionConfig{
		Count: cfg.Mock.TransactionCount,
	})

	portfolio := service.NewPortfolioService(service.PortfolioServiceConfig{
		Chains:            cfg.Chains.Enabled,
		Adapters:          adapters,
		Tokens:            tokens,
		Prices:            prices,
		MaxParallelChains: cfg.Aggregator.MaxParallelChains,
	})

	return &App{
		Config:       cfg,
		Logger:       logger,
		Adapters:     adapters,
		Prices:       prices,
		Tokens:       tokens,
		Transactions: transactions,
		Portfolio:    portfolio,
		closeCache:   closeCache,
	}, nil
}

// Close releases RPC connections and the price cache
func (a *App) Close() error {
	a.Adapters.Close()
	return a.closeCache()
}
