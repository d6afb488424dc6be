package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-tracker/internal/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "ENABLED_CHAINS", "INFURA_API_KEY", "ETHEREUM_RPC_PRIMARY",
		"POLYGON_RPC_PRIMARY", "BSC_RPC_PRIMARY", "UPSTREAM_TIMEOUT", "PRICE_CACHE_BACKEND", "MOCK_TRANSACTION_COUNT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, []types.ChainID{types.ChainEthereum, types.ChainPolygon, types.ChainBSC}, cfg.Chains.Enabled)
	assert.Empty(t, cfg.Chains.Chains[types.ChainEthereum].RPCPrimary)
	assert.Equal(t, "https://polygon-rpc.com", cfg.Chains.Chains[types.ChainPolygon].RPCPrimary)
	assert.Equal(t, "https://bsc-dataseed.binance.org/", cfg.Chains.Chains[types.ChainBSC].RPCPrimary)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, PriceCacheMemory, cfg.PriceCache.Backend)
	assert.Equal(t, 30*time.Second, cfg.PriceCache.TTL)
	assert.Equal(t, 1, cfg.Mock.TransactionCount)
	assert.True(t, cfg.Mock.TokensEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENABLED_CHAINS", " Arbitrum, ethereum,arbitrum ,")
	t.Setenv("INFURA_API_KEY", "secret")
	t.Setenv("ARBITRUM_RPC_SECONDARY", "https://arbitrum.backup")
	t.Setenv("UPSTREAM_TIMEOUT", "2s")
	t.Setenv("PRICE_CACHE_BACKEND", "REDIS")
	t.Setenv("MOCK_TOKENS_ENABLED", "false")
	t.Setenv("COINGECKO_URL", "http://localhost:9999/api/v3/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []types.ChainID{types.ChainArbitrum, types.ChainEthereum}, cfg.Chains.Enabled)
	assert.Equal(t, "https://mainnet.infura.io/v3/secret", cfg.Chains.Chains[types.ChainEthereum].RPCPrimary)
	assert.Equal(t, "https://arbitrum.backup", cfg.Chains.Chains[types.ChainArbitrum].RPCSecondary)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, PriceCacheRedis, cfg.PriceCache.Backend)
	assert.False(t, cfg.Mock.TokensEnabled)
	assert.Equal(t, "http://localhost:9999/api/v3", cfg.Prices.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Chains:     ChainsConfig{Enabled: []types.ChainID{types.ChainEthereum}},
			Upstream:   UpstreamConfig{Timeout: time.Second},
			Prices:     PriceFeedConfig{RPS: 1, Burst: 1},
			PriceCache: PriceCacheConfig{Backend: PriceCacheMemory, TTL: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no chains", func(c *Config) { c.Chains.Enabled = nil }},
		{"unknown chain", func(c *Config) { c.Chains.Enabled = []types.ChainID{"solana"} }},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }},
		{"bad cache backend", func(c *Config) { c.PriceCache.Backend = "memcached" }},
		{"zero cache ttl", func(c *Config) { c.PriceCache.TTL = 0 }},
		{"zero price rps", func(c *Config) { c.Prices.RPS = 0 }},
		{"negative parallelism", func(c *Config) { c.Aggregator.MaxParallelChains = -1 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	noCache := valid()
	noCache.PriceCache = PriceCacheConfig{Backend: PriceCacheNone}
	assert.NoError(t, noCache.Validate())
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "NONEXISTENT_KEY",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				if err := os.Setenv(tt.key, tt.envValue); err != nil {
					t.Fatalf("Failed to set env var: %v", err)
				}
				defer func() {
					_ = os.Unsetenv(tt.key)
				}()
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvTypedHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "200")
	t.Setenv("TEST_INT_INVALID", "invalid")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_DURATION", "30s")
	t.Setenv("TEST_DURATION_INVALID", "soon")

	assert.Equal(t, 200, getEnvAsInt("TEST_INT", 100))
	assert.Equal(t, 100, getEnvAsInt("TEST_INT_INVALID", 100))
	assert.Equal(t, 100, getEnvAsInt("TEST_INT_NOTSET", 100))
	assert.Equal(t, 0.25, getEnvAsFloat("TEST_FLOAT", 1))
	assert.Equal(t, 1.5, getEnvAsFloat("TEST_FLOAT_NOTSET", 1.5))
	assert.False(t, getEnvAsBool("TEST_BOOL", true))
	assert.True(t, getEnvAsBool("TEST_BOOL_NOTSET", true))
	assert.Equal(t, 30*time.Second, getEnvAsDuration("TEST_DURATION", 10*time.Second))
	assert.Equal(t, 10*time.Second, getEnvAsDuration("TEST_DURATION_INVALID", 10*time.Second))
}
