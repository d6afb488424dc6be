package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/portfolio-tracker/internal/config"
)

// PriceCache stores recently fetched USD prices keyed by price-feed id
type PriceCache interface {
	// GetPrices returns the cached subset of ids
	GetPrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)

	// SetPrices stores prices for the cache TTL
	SetPrices(ctx context.Context, prices map[string]decimal.Decimal) error
}

// PriceKey generates the cache key for a price-feed id
// Format: price:usd:<id>
func PriceKey(id string) string {
	return "price:usd:" + strings.ToLower(id)
}

// RedisPriceCache keeps prices in Redis so several server instances share them
type RedisPriceCache struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewRedisPriceCache creates a Redis-backed price cache
func NewRedisPriceCache(redis *RedisCache, ttl time.Duration) *RedisPriceCache {
	return &RedisPriceCache{redis: redis, ttl: ttl}
}

// GetPrices returns the cached subset of ids
func (c *RedisPriceCache) GetPrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = PriceKey(id)
	}

	values, err := c.redis.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("price cache read: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(ids))
	for i, raw := range values {
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		prices[ids[i]] = price
	}
	return prices, nil
}

// SetPrices stores prices for the cache TTL
func (c *RedisPriceCache) SetPrices(ctx context.Context, prices map[string]decimal.Decimal) error {
	values := make(map[string]string, len(prices))
	for id, price := range prices {
		values[PriceKey(id)] = price.String()
	}

	if err := c.redis.SetMany(ctx, values, c.ttl); err != nil {
		return fmt.Errorf("price cache write: %w", err)
	}
	return nil
}

// MemoryPriceCache keeps prices in process memory
type MemoryPriceCache struct {
	cache *gocache.Cache
}

// NewMemoryPriceCache creates an in-process price cache
func NewMemoryPriceCache(ttl time.Duration) *MemoryPriceCache {
	return &MemoryPriceCache{cache: gocache.New(ttl, 2*ttl)}
}

// GetPrices returns the cached subset of ids
func (c *MemoryPriceCache) GetPrices(_ context.Context, ids []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		if v, ok := c.cache.Get(PriceKey(id)); ok {
			prices[id] = v.(decimal.Decimal)
		}
	}
	return prices, nil
}

// SetPrices stores prices for the cache TTL
func (c *MemoryPriceCache) SetPrices(_ context.Context, prices map[string]decimal.Decimal) error {
	for id, price := range prices {
		c.cache.Set(PriceKey(id), price, gocache.DefaultExpiration)
	}
	return nil
}

// NewPriceCache builds the backend selected by PRICE_CACHE_BACKEND.
// The returned cache is nil for the "none" backend; close is never nil.
func NewPriceCache(cfg *config.Config) (cache PriceCache, closeFn func() error, err error) {
	noop := func() error { return nil }

	switch cfg.PriceCache.Backend {
	case config.PriceCacheNone:
		return nil, noop, nil
	case config.PriceCacheRedis:
		redis, err := NewRedisCache(&cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisPriceCache(redis, cfg.PriceCache.TTL), redis.Close, nil
	default:
		return NewMemoryPriceCache(cfg.PriceCache.TTL), noop, nil
	}
}
