package adapter

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DataProvider defines the interface for blockchain data providers
type DataProvider interface {
	// GetCurrentURL returns the currently active RPC endpoint URL
	GetCurrentURL() (string, error)

	// Failover switches between the primary and secondary endpoint.
	// Returns error if no other endpoint is configured.
	Failover() error

	// RecordSuccess records a successful request for health tracking
	RecordSuccess(duration time.Duration)

	// RecordFailure records a failed request for health tracking
	RecordFailure(err error)

	// GetHealth returns the current health status of the provider
	GetHealth() *ProviderHealth

	// Redact strips configured endpoint URLs from a message
	Redact(message string) string
}

// ProviderHealth represents the health status of a data provider.
// Endpoint carries only scheme and host so API keys embedded in the URL are never reported.
type ProviderHealth struct {
	Endpoint         string    `json:"endpoint"`
	OnSecondary      bool      `json:"onSecondary"`
	TotalRequests    int64     `json:"totalRequests"`
	SuccessfulReqs   int64     `json:"successfulRequests"`
	FailedReqs       int64     `json:"failedRequests"`
	SuccessRate      float64   `json:"successRate"`
	AverageLatencyMs int64     `json:"averageLatencyMs"`
	LastSuccess      time.Time `json:"lastSuccess"`
	LastFailure      time.Time `json:"lastFailure"`
	LastError        string    `json:"lastError,omitempty"`
	ConsecutiveFails int       `json:"consecutiveFails"`
	IsHealthy        bool      `json:"isHealthy"`
}

// RPCProvider implements DataProvider for a primary and optional secondary JSON-RPC endpoint
type RPCProvider struct {
	mu sync.RWMutex

	// Provider configuration
	primaryURL   string
	secondaryURL string
	currentURL   string

	// Health tracking
	totalRequests    int64
	successfulReqs   int64
	failedReqs       int64
	totalLatency     time.Duration
	lastSuccess      time.Time
	lastFailure      time.Time
	lastError        string
	consecutiveFails int

	// Health thresholds
	maxConsecutiveFails int     // Max consecutive failures before marking unhealthy
	minSuccessRate      float64 // Minimum success rate to be considered healthy
}

// NewRPCProvider creates a new RPC provider with primary and optional secondary URLs
func NewRPCProvider(primaryURL, secondaryURL string) (*RPCProvider, error) {
	if primaryURL == "" {
		return nil, fmt.Errorf("primary URL cannot be empty")
	}

	return &RPCProvider{
		primaryURL:          primaryURL,
		secondaryURL:        secondaryURL,
		currentURL:          primaryURL,
		maxConsecutiveFails: 5,
		minSuccessRate:      0.5,
	}, nil
}

// GetCurrentURL returns the currently active RPC endpoint URL
func (p *RPCProvider) GetCurrentURL() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.currentURL == "" {
		return "", fmt.Errorf("no active URL configured")
	}

	return p.currentURL, nil
}

// Failover switches to the other configured endpoint
func (p *RPCProvider) Failover() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.secondaryURL == "" {
		return fmt.Errorf("no secondary provider configured")
	}

	if p.currentURL == p.primaryURL {
		p.currentURL = p.secondaryURL
	} else {
		p.currentURL = p.primaryURL
	}
	return nil
}

// RecordSuccess records a successful request for health tracking
func (p *RPCProvider) RecordSuccess(duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalRequests++
	p.successfulReqs++
	p.totalLatency += duration
	p.lastSuccess = time.Now()
	p.consecutiveFails = 0
}

// RecordFailure records a failed request for health tracking
func (p *RPCProvider) RecordFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalRequests++
	p.failedReqs++
	p.lastFailure = time.Now()
	p.consecutiveFails++
	if err != nil {
		p.lastError = p.redactLocked(err.Error())
	}
}

// Redact replaces every configured endpoint URL in message with its redacted form
func (p *RPCProvider) Redact(message string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.redactLocked(message)
}

func (p *RPCProvider) redactLocked(message string) string {
	for _, u := range []string{p.primaryURL, p.secondaryURL} {
		if u != "" {
			message = strings.ReplaceAll(message, u, RedactURL(u))
		}
	}
	return message
}

// GetHealth returns the current health status of the provider
func (p *RPCProvider) GetHealth() *ProviderHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var successRate float64
	if p.totalRequests > 0 {
		successRate = float64(p.successfulReqs) / float64(p.totalRequests)
	}

	var avgLatency time.Duration
	if p.successfulReqs > 0 {
		avgLatency = p.totalLatency / time.Duration(p.successfulReqs)
	}

	return &ProviderHealth{
		Endpoint:         RedactURL(p.currentURL),
		OnSecondary:      p.currentURL != p.primaryURL,
		TotalRequests:    p.totalRequests,
		SuccessfulReqs:   p.successfulReqs,
		FailedReqs:       p.failedReqs,
		SuccessRate:      successRate,
		AverageLatencyMs: avgLatency.Milliseconds(),
		LastSuccess:      p.lastSuccess,
		LastFailure:      p.lastFailure,
		LastError:        p.lastError,
		ConsecutiveFails: p.consecutiveFails,
		IsHealthy:        p.isHealthyLocked(),
	}
}

// isHealthyLocked checks health status (must be called with lock held)
func (p *RPCProvider) isHealthyLocked() bool {
	if p.consecutiveFails >= p.maxConsecutiveFails {
		return false
	}

	// Check success rate (only if we have enough data)
	if p.totalRequests >= 10 {
		successRate := float64(p.successfulReqs) / float64(p.totalRequests)
		if successRate < p.minSuccessRate {
			return false
		}
	}

	return true
}

// RedactURL reduces an endpoint URL to scheme and host
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unparseable endpoint"
	}
	return u.Scheme + "://" + u.Hostname()
}
