package service

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/portfolio-tracker/internal/adapter"
	"github.com/portfolio-tracker/internal/logging"
	"github.com/portfolio-tracker/internal/metrics"
	"github.com/portfolio-tracker/internal/storage"
)

// PriceLookup resolves price-feed ids to USD prices.
// Ids without a known price are absent from the result; callers treat them as zero.
type PriceLookup interface {
	FetchPrices(ctx context.Context, ids []string) map[string]decimal.Decimal
}

// PriceService serves prices from the cache and one batched upstream call
type PriceService struct {
	quoter adapter.PriceQuoter
	cache  storage.PriceCache
}

// NewPriceService creates a new price service; cache may be nil
func NewPriceService(quoter adapter.PriceQuoter, cache storage.PriceCache) *PriceService {
	return &PriceService{
		quoter: quoter,
		cache:  cache,
	}
}

// FetchPrices returns USD prices for ids. It never fails: upstream and cache
// errors are logged and whatever could be resolved is returned.
func (s *PriceService) FetchPrices(ctx context.Context, ids []string) map[string]decimal.Decimal {
	logger := logging.FromContext(ctx)

	wanted := lo.Uniq(lo.Compact(ids))
	prices := make(map[string]decimal.Decimal, len(wanted))
	if len(wanted) == 0 {
		return prices
	}

	missing := wanted
	if s.cache != nil {
		cached, err := s.cache.GetPrices(ctx, wanted)
		if err != nil {
			logger.WithError(err).Warn("Price cache read failed")
		} else {
			for id, price := range cached {
				prices[id] = price
			}
			missing = lo.Filter(wanted, func(id string, _ int) bool {
				_, ok := prices[id]
				return !ok
			})
			metrics.PriceCacheLookupsTotal.WithLabelValues("hit").Add(float64(len(wanted) - len(missing)))
			metrics.PriceCacheLookupsTotal.WithLabelValues("miss").Add(float64(len(missing)))
		}
	}

	if len(missing) == 0 {
		return prices
	}

	fetched, err := s.quoter.QuoteUSD(ctx, missing)
	if err != nil {
		metrics.PriceRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		logger.WithError(err).WithField("ids", missing).Warn("Price lookup failed, continuing without prices")
		return prices
	}
	metrics.PriceRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	fetched = lo.PickByKeys(fetched, missing)
	for id, price := range fetched {
		prices[id] = price
	}

	if s.cache != nil && len(fetched) > 0 {
		if err := s.cache.SetPrices(ctx, fetched); err != nil {
			logger.WithError(err).Warn("Price cache write failed")
		}
	}

	return prices
}
