package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	apperrors "github.com/portfolio-tracker/internal/errors"
	"github.com/portfolio-tracker/internal/metrics"
)

// limiterIdleTTL is how long an idle client keeps its token bucket
const limiterIdleTTL = 10 * time.Minute

// RateLimiter manages per-client token buckets for API requests
type RateLimiter struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: cache.New(limiterIdleTTL, 2*limiterIdleTTL),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// getLimiter returns the limiter of a client, creating it on first use
func (rl *RateLimiter) getLimiter(client string) *rate.Limiter {
	if limiter, ok := rl.limiters.Get(client); ok {
		rl.limiters.SetDefault(client, limiter)
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.limiters.Add(client, limiter, cache.DefaultExpiration); err != nil {
		// Another request created it first
		if existing, ok := rl.limiters.Get(client); ok {
			return existing.(*rate.Limiter)
		}
	}
	return limiter
}

// retryAfterSeconds is the time until one token is refilled, rounded up
func (rl *RateLimiter) retryAfterSeconds() int {
	return int(math.Max(1, math.Ceil(1/float64(rl.limit))))
}

// clientKey identifies the caller by remote IP
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware creates a middleware that enforces rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := rl.getLimiter(clientKey(r))

			if !limiter.Allow() {
				metrics.RateLimitedTotal.Inc()

				retryAfter := rl.retryAfterSeconds()
				catErr := apperrors.NewRateLimitError(retryAfter)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respondError(w, catErr.StatusCode, catErr.Code, catErr.Message, catErr.Details)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
