// Package server exposes the marketplace list API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HerbHall/tradeboard/internal/listapi"
	"github.com/HerbHall/tradeboard/internal/services"
	"github.com/HerbHall/tradeboard/internal/version"
)

// Deps are the repositories the handlers read from.
type Deps struct {
	Products services.ProductRepository
	Orders   services.OrderRepository
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits each client IP to rps requests per second with the
// given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = newIPLimiter(rate.Limit(rps), burst)
	}
}

// WithPageSizes sets the default and maximum page size of list routes.
func WithPageSizes(def, max int) Option {
	return func(s *Server) {
		s.defaultPageSize = def
		s.maxPageSize = max
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// Server is the tradeboard HTTP server.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *zap.Logger
	mux        *http.ServeMux
	registry   *prometheus.Registry
	metrics    *metrics
	limiter    *ipLimiter

	defaultPageSize int
	maxPageSize     int
}

// New creates a Server listening on addr.
func New(addr string, deps Deps, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		deps:            deps,
		logger:          logger,
		mux:             http.NewServeMux(),
		defaultPageSize: listapi.DefaultLimits.DefaultPageSize,
		maxPageSize:     listapi.DefaultLimits.MaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.handle("GET /api/v1/health", s.handleHealth)
	s.handle("GET /api/v1/products", s.handleListProducts)
	s.handle("GET /api/v1/products/{id}", s.handleGetProduct)
	s.handle("GET /api/v1/orders", s.handleListOrders)
	s.handle("GET /api/v1/orders/{id}", s.handleGetOrder)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// handle mounts h under pattern with per-route metrics.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.metrics.instrument(pattern, h))
	s.logger.Debug("mounted route", zap.String("pattern", pattern))
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.rateLimitMiddleware(h)
	h = loggingMiddleware(s.logger)(h)
	return requestIDMiddleware(h)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("X-Tradeboard-Version", version.Short())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": version.Name,
		"version": version.Map(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
