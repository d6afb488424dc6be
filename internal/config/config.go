// Package config provides configuration management for the portfolio tracker.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/portfolio-tracker/internal/types"
)

// Price cache backends
const (
	PriceCacheMemory = "memory"
	PriceCacheRedis  = "redis"
	PriceCacheNone   = "none"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Chains     ChainsConfig
	Upstream   UpstreamConfig
	Prices     PriceFeedConfig
	PriceCache PriceCacheConfig
	Redis      RedisConfig
	Mock       MockConfig
	Aggregator AggregatorConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ChainsConfig holds chain configuration
type ChainsConfig struct {
	Enabled []types.ChainID
	Chains  map[types.ChainID]ChainConfig
}

// ChainConfig holds configuration for a specific chain
type ChainConfig struct {
	RPCPrimary   string
	RPCSecondary string
}

// UpstreamConfig holds settings shared by all outbound calls
type UpstreamConfig struct {
	Timeout time.Duration
}

// PriceFeedConfig holds CoinGecko configuration
type PriceFeedConfig struct {
	BaseURL string
	APIKey  string
	RPS     float64
	Burst   int
}

// PriceCacheConfig holds price cache configuration
type PriceCacheConfig struct {
	Backend string
	TTL     time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

// MockConfig holds settings of the placeholder token and transaction providers
type MockConfig struct {
	TokensEnabled    bool
	MaxTokenBalance  float64
	TransactionCount int
}

// AggregatorConfig holds portfolio aggregation settings
type AggregatorConfig struct {
	MaxParallelChains int // 0 means one worker per enabled chain
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// default public RPC endpoints; ethereum is built from INFURA_API_KEY
var defaultRPCEndpoints = map[types.ChainID]string{
	types.ChainPolygon:  "https://polygon-rpc.com",
	types.ChainBSC:      "https://bsc-dataseed.binance.org/",
	types.ChainArbitrum: "https://arb1.arbitrum.io/rpc",
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5000"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Upstream: UpstreamConfig{
			Timeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		},
		Prices: PriceFeedConfig{
			BaseURL: strings.TrimRight(getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"), "/"),
			APIKey:  getEnv("COINGECKO_API_KEY", ""),
			RPS:     getEnvAsFloat("COINGECKO_RPS", 0.5),
			Burst:   getEnvAsInt("COINGECKO_BURST", 3),
		},
		PriceCache: PriceCacheConfig{
			Backend: strings.ToLower(getEnv("PRICE_CACHE_BACKEND", PriceCacheMemory)),
			TTL:     getEnvAsDuration("PRICE_CACHE_TTL", 30*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Mock: MockConfig{
			TokensEnabled:    getEnvAsBool("MOCK_TOKENS_ENABLED", true),
			MaxTokenBalance:  getEnvAsFloat("MOCK_MAX_TOKEN_BALANCE", 10),
			TransactionCount: getEnvAsInt("MOCK_TRANSACTION_COUNT", 1),
		},
		Aggregator: AggregatorConfig{
			MaxParallelChains: getEnvAsInt("AGGREGATOR_MAX_PARALLEL_CHAINS", 0),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Load chain configurations
	config.Chains = loadChainConfigs()

	return config, nil
}

// loadChainConfigs loads chain-specific configurations
func loadChainConfigs() ChainsConfig {
	var enabled []types.ChainID
	for _, chain := range strings.Split(getEnv("ENABLED_CHAINS", "ethereum,polygon,bsc"), ",") {
		chain = strings.ToLower(strings.TrimSpace(chain))
		if chain == "" {
			continue
		}
		enabled = append(enabled, types.ChainID(chain))
	}
	enabled = lo.Uniq(enabled)

	chains := make(map[types.ChainID]ChainConfig)
	for _, chain := range enabled {
		prefix := strings.ToUpper(string(chain))
		chains[chain] = ChainConfig{
			RPCPrimary:   getEnv(prefix+"_RPC_PRIMARY", defaultRPCEndpoint(chain)),
			RPCSecondary: getEnv(prefix+"_RPC_SECONDARY", ""),
		}
	}

	return ChainsConfig{
		Enabled: enabled,
		Chains:  chains,
	}
}

func defaultRPCEndpoint(chain types.ChainID) string {
	if chain == types.ChainEthereum {
		if key := getEnv("INFURA_API_KEY", ""); key != "" {
			return "https://mainnet.infura.io/v3/" + key
		}
		return ""
	}
	return defaultRPCEndpoints[chain]
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	if len(c.Chains.Enabled) == 0 {
		return fmt.Errorf("ENABLED_CHAINS must name at least one chain")
	}
	for _, chain := range c.Chains.Enabled {
		if _, ok := types.LookupChain(chain); !ok {
			return fmt.Errorf("unsupported chain in ENABLED_CHAINS: %q", chain)
		}
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.Upstream.Timeout)
	}
	switch c.PriceCache.Backend {
	case PriceCacheMemory, PriceCacheRedis, PriceCacheNone:
	default:
		return fmt.Errorf("unsupported PRICE_CACHE_BACKEND: %q", c.PriceCache.Backend)
	}
	if c.PriceCache.Backend != PriceCacheNone && c.PriceCache.TTL <= 0 {
		return fmt.Errorf("PRICE_CACHE_TTL must be positive, got %s", c.PriceCache.TTL)
	}
	if c.Prices.RPS <= 0 || c.Prices.Burst <= 0 {
		return fmt.Errorf("COINGECKO_RPS and COINGECKO_BURST must be positive")
	}
	if c.Mock.MaxTokenBalance < 0 || c.Mock.TransactionCount < 0 {
		return fmt.Errorf("MOCK_MAX_TOKEN_BALANCE and MOCK_TRANSACTION_COUNT must not be negative")
	}
	if c.Aggregator.MaxParallelChains < 0 {
		return fmt.Errorf("AGGREGATOR_MAX_PARALLEL_CHAINS must not be negative")
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
