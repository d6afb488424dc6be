// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portfolio-tracker/internal/config"
	"github.com/portfolio-tracker/internal/logging"
	"github.com/portfolio-tracker/internal/service"
	"github.com/portfolio-tracker/internal/types"
)

// Service interfaces for dependency injection and testing

// PortfolioServiceInterface defines the portfolio operations served over HTTP
type PortfolioServiceInterface interface {
	BuildPortfolio(ctx context.Context, address string) (*types.Portfolio, error)
	ChainStatuses() []service.ChainStatus
}

// TransactionServiceInterface defines the transaction operations served over HTTP
type TransactionServiceInterface interface {
	FetchTransactions(ctx context.Context, address string) []types.TransactionRecord
}

// Server represents the HTTP API server.
type Server struct {
	router             *mux.Router
	httpServer         *http.Server
	portfolioService   PortfolioServiceInterface
	transactionService TransactionServiceInterface
	logger             *logging.Logger
	config             *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64 // requests per second per client
	RateLimitBurst  int
}

// NewServerConfig derives the server settings from the application config
func NewServerConfig(cfg *config.Config) *ServerConfig {
	return &ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    cfg.RateLimit.RPS,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	portfolioService PortfolioServiceInterface,
	transactionService TransactionServiceInterface,
	logger *logging.Logger,
) *Server {
	s := &Server{
		router:             mux.NewRouter(),
		portfolioService:   portfolioService,
		transactionService: transactionService,
		logger:             logger,
		config:             config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Applied to every matched route
	s.router.Use(RequestIDMiddleware(s.logger))
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API routes
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(CORSMiddleware)
	api.Use(RateLimitMiddleware(rateLimiter)) // after CORS so preflights are not counted
	api.Use(CompressionMiddleware)

	api.HandleFunc("/portfolio/{address}", s.handleGetPortfolio).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/transactions/{address}", s.handleGetTransactions).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/chains", s.handleGetChains).Methods(http.MethodGet, http.MethodOptions)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "portfolio-tracker",
	})
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
