package app

import (
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-tracker/internal/config"
	"github.com/portfolio-tracker/internal/logging"
	"github.com/portfolio-tracker/internal/types"
)

func quietLogger() *logging.Logger {
	logger := logging.NewLogger(logging.LevelError, logging.FormatJSON)
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Chains: config.ChainsConfig{
			Enabled: []types.ChainID{types.ChainEthereum, types.ChainPolygon},
			Chains: map[types.ChainID]config.ChainConfig{
				types.ChainEthereum: {},
				types.ChainPolygon:  {RPCPrimary: "http://127.0.0.1:1"},
			},
		},
		Upstream:   config.UpstreamConfig{Timeout: time.Second},
		Prices:     config.PriceFeedConfig{BaseURL: "http://127.0.0.1:1", RPS: 1, Burst: 1},
		PriceCache: config.PriceCacheConfig{Backend: config.PriceCacheMemory, TTL: time.Minute},
		Mock:       config.MockConfig{TokensEnabled: true, MaxTokenBalance: 10, TransactionCount: 1},
	}
}

func TestNewWiresConfiguredChains(t *testing.T) {
	a, err := New(testConfig(), quietLogger())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	assert.Len(t, a.Adapters, 1)
	assert.Contains(t, a.Adapters, types.ChainPolygon)

	statuses := a.Portfolio.ChainStatuses()
	require.Len(t, statuses, 2)
	assert.False(t, statuses[0].Configured)
	assert.True(t, statuses[1].Configured)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Chains.Enabled = []types.ChainID{"solana"}

	_, err := New(cfg, quietLogger())
	assert.Error(t, err)
}

func TestNewWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.PriceCache.Backend = config.PriceCacheRedis
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: mr.Port()}

	a, err := New(cfg, quietLogger())
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.PriceCache.Backend = config.PriceCacheRedis
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "1"}

	_, err := New(cfg, quietLogger())
	assert.Error(t, err)
}
