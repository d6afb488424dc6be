package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// PriceQuoter fetches USD prices for price-feed identifiers
type PriceQuoter interface {
	// QuoteUSD returns the USD price of each known id in one upstream call.
	// Unknown ids are absent from the result.
	QuoteUSD(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}

// CoinGeckoClient fetches prices from the CoinGecko simple/price endpoint
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// CoinGeckoConfig holds configuration for creating a CoinGeckoClient
type CoinGeckoConfig struct {
	BaseURL string
	APIKey  string // sent as x-cg-demo-api-key when set
	Timeout time.Duration
	RPS     float64 // outbound requests per second
	Burst   int
}

// NewCoinGeckoClient creates a new CoinGecko API client
func NewCoinGeckoClient(cfg CoinGeckoConfig) *CoinGeckoClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 0.5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		timeout:    timeout,
	}
}

// QuoteUSD fetches USD prices for ids in a single batched request
func (c *CoinGeckoClient) QuoteUSD(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	if len(ids) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	// the timeout covers the limiter wait as well as the request
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: price limiter: %v", ErrProviderUnavailable, err)
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating CoinGecko request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: CoinGecko request failed: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading CoinGecko response: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: CoinGecko HTTP %d: %s", ErrProviderUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	// Parse: {"ethereum":{"usd":2000.5},"tether":{"usd":1}}
	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing CoinGecko response: %v", ErrInvalidResponse, err)
	}

	prices := make(map[string]decimal.Decimal, len(raw))
	for id, quotes := range raw {
		usd, ok := quotes["usd"]
		if !ok || usd.IsNegative() {
			continue
		}
		prices[id] = usd
	}

	return prices, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
