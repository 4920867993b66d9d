// Package server provides the gateway HTTP server: route setup, the
// middleware chain, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"stratus-hq/helios/pkg/config"
	"stratus-hq/helios/pkg/gateway/handlers"
	"stratus-hq/helios/pkg/gateway/middleware"
	"stratus-hq/helios/pkg/ratelimit"
	"stratus-hq/helios/pkg/routing"
	"stratus-hq/helios/pkg/telemetry/metrics"
	"stratus-hq/helios/pkg/usage"
)

// Options collects the dependencies the server wires into its routes.
type Options struct {
	Config *config.Config

	// Chain is the provider fallback chain serving analysis requests.
	Chain *routing.Chain

	// Limiter enforces per-client admission; nil disables rate limiting.
	Limiter *ratelimit.Limiter

	// Collector records gateway metrics; nil disables metrics.
	Collector *metrics.Collector

	// Store and Calculator back usage accounting; nil disables it.
	Store      *usage.Store
	Calculator *usage.Calculator

	// Version is reported by the health endpoint.
	Version string

	Logger *slog.Logger
}

// Server is the gateway HTTP server.
type Server struct {
	opts       Options
	httpServer *http.Server
	logger     *slog.Logger

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server from the given options.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		opts:   opts,
		logger: logger.With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until the context is cancelled, a
// shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	cfg := s.opts.Config.Server
	s.httpServer = &http.Server{
		Addr:           cfg.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway server", "address", cfg.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains in-flight requests, bounded by the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.opts.Config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the route table and middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	analyzeHandler := handlers.NewAnalyzeHandler(
		s.opts.Chain, s.opts.Collector, s.opts.Store, s.opts.Calculator)
	usageHandler := handlers.NewUsageHandler(s.opts.Store)

	var providerNames []string
	if s.opts.Chain != nil {
		providerNames = s.opts.Chain.ProviderNames()
	}
	healthHandler := handlers.NewHealthHandler(s.opts.Version, providerNames)

	mux.Handle("POST /v1/analyze", analyzeHandler)
	mux.Handle("GET /v1/usage", usageHandler)
	mux.Handle("GET /health", healthHandler)

	if s.opts.Collector != nil && s.opts.Config.Telemetry.Metrics.MetricsEnabled() {
		path := s.opts.Config.Telemetry.Metrics.Path
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.Handle("GET "+path, s.opts.Collector.Handler())
	}

	// Middleware chain, innermost first: timeout, admission, logging,
	// request ID, recovery outermost.
	var handler http.Handler = mux
	handler = middleware.Timeout(s.opts.Config.Server.RequestTimeout)(handler)
	handler = middleware.RateLimit(s.opts.Limiter, s.opts.Collector)(handler)
	handler = middleware.RequestLogger(s.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}
