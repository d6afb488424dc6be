package adapter

import (
	"time"

	"github.com/portfolio-tracker/internal/config"
	"github.com/portfolio-tracker/internal/logging"
	"github.com/portfolio-tracker/internal/types"
)

// ChainAdapters holds one adapter per configured chain
type ChainAdapters map[types.ChainID]BalanceFetcher

// Close releases every adapter connection
func (c ChainAdapters) Close() {
	for _, a := range c {
		if closer, ok := a.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// NewChainAdapters creates an EVMAdapter for each enabled chain with a primary endpoint.
// Chains without one are left out; the aggregator reports them as not configured.
func NewChainAdapters(chains config.ChainsConfig, timeout time.Duration, logger *logging.Logger) ChainAdapters {
	adapters := make(ChainAdapters)

	for _, chainID := range chains.Enabled {
		chainCfg, ok := chains.Chains[chainID]
		if !ok || chainCfg.RPCPrimary == "" {
			logger.WithField("chain", chainID).Warn("Skipping chain: no RPC endpoint configured")
			continue
		}

		provider, err := NewRPCProvider(chainCfg.RPCPrimary, chainCfg.RPCSecondary)
		if err != nil {
			logger.WithError(err).WithField("chain", chainID).Warn("Failed to create provider for chain")
			continue
		}

		chainAdapter, err := NewEVMAdapter(&EVMAdapterConfig{
			ChainID:  chainID,
			Provider: provider,
			Timeout:  timeout,
		})
		if err != nil {
			logger.WithError(err).WithField("chain", chainID).Warn("Failed to create adapter for chain")
			continue
		}

		adapters[chainID] = chainAdapter
		logger.WithFields(map[string]interface{}{
			"chain":     chainID,
			"rpc":       RedactURL(chainCfg.RPCPrimary),
			"secondary": chainCfg.RPCSecondary != "",
		}).Info("Chain adapter initialized")
	}

	return adapters
}
