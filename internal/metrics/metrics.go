// Package metrics holds the Prometheus collectors of the portfolio tracker.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio_tracker"

// Chain fetch outcomes
const (
	OutcomeSuccess       = "success"
	OutcomeUnavailable   = "unavailable"
	OutcomeNotConfigured = "not_configured"
	OutcomeError         = "error"
)

var (
	// HTTPRequestsTotal counts API requests by route and status
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests processed, by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes API latency by route
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ChainFetchTotal counts native balance fetches by chain and outcome
	ChainFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_fetch_total",
		Help:      "Native balance fetches, by chain and outcome.",
	}, []string{"chain", "outcome"})

	// ChainFetchDuration observes native balance fetch latency by chain
	ChainFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chain_fetch_duration_seconds",
		Help:      "Native balance fetch latency, by chain.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"chain"})

	// PriceRequestsTotal counts upstream price-feed calls by outcome
	PriceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_requests_total",
		Help:      "Upstream price-feed calls, by outcome.",
	}, []string{"outcome"})

	// PriceCacheLookupsTotal counts price ids served from or missed in the cache
	PriceCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_cache_lookups_total",
		Help:      "Price ids looked up in the cache, by result.",
	}, []string{"result"})

	// RateLimitedTotal counts requests rejected by the inbound limiter
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the inbound rate limiter.",
	})
)

var registerOnce sync.Once

// MustRegisterMetrics registers every collector with reg once per process
func MustRegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			ChainFetchTotal,
			ChainFetchDuration,
			PriceRequestsTotal,
			PriceCacheLookupsTotal,
			RateLimitedTotal,
		)
	})
}

// ObserveChainFetch records one native balance fetch
func ObserveChainFetch(chain string, outcome string, elapsed time.Duration) {
	ChainFetchTotal.WithLabelValues(chain, outcome).Inc()
	if outcome != OutcomeNotConfigured {
		ChainFetchDuration.WithLabelValues(chain).Observe(elapsed.Seconds())
	}
}
