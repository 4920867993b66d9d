package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"stratus-hq/helios/pkg/config"
	"stratus-hq/helios/pkg/providerfactory"
	"stratus-hq/helios/pkg/ratelimit"
	"stratus-hq/helios/pkg/ratelimit/storage"
	"stratus-hq/helios/pkg/server"
	"stratus-hq/helios/pkg/telemetry/logging"
	"stratus-hq/helios/pkg/telemetry/metrics"
	"stratus-hq/helios/pkg/telemetry/tracing"
	"stratus-hq/helios/pkg/usage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Helios gateway",
	Long: `Start the Helios gateway with the specified configuration.

The gateway listens on the configured address, admits requests under the
per-client rate limit, and serves them through the provider fallback chain.

Examples:
  # Start with the default config
  helios run

  # Start with a custom config
  helios run --config /etc/helios/config.yaml

  # Override the listen address
  helios run --listen 0.0.0.0:8080

  # Validate config without starting
  helios run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger := logging.Setup(cfg.Telemetry.Logging)

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.MetricsEnabled() {
		collector = metrics.NewCollector(nil)
	}

	// Rate limiter with optional persistence and scheduled cleanup.
	var limiter *ratelimit.Limiter
	var backend storage.Backend
	if cfg.RateLimit.RateLimitEnabled() {
		limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute)

		backend, err = newRateLimitBackend(cfg.RateLimit.Storage)
		if err != nil {
			return fmt.Errorf("initializing rate limit storage: %w", err)
		}
		defer backend.Close()

		if snap, err := backend.Load(ctx); err != nil {
			logger.Warn("failed to load admission windows, starting fresh", "error", err)
		} else if len(snap) > 0 {
			limiter.Restore(snap)
			logger.Info("restored admission windows", "keys", len(snap))
		}

		janitor := ratelimit.NewJanitor(limiter, cfg.RateLimit.CleanupSchedule)
		if err := janitor.Start(ctx); err != nil {
			return fmt.Errorf("starting rate limit janitor: %w", err)
		}
		defer janitor.Stop()
	}

	// Usage accounting.
	var store *usage.Store
	var calculator *usage.Calculator
	if cfg.Usage.UsageEnabled() {
		store, err = usage.NewStore(&usage.StoreConfig{Path: cfg.Usage.Path})
		if err != nil {
			return fmt.Errorf("initializing usage store: %w", err)
		}
		defer store.Close()

		calculator = usage.NewCalculator(pricingTable(cfg.Usage.Pricing))

		if cfg.Usage.Retention > 0 {
			go pruneLoop(ctx, store, cfg.Usage.Retention, logger)
		}
	}

	chain, err := providerfactory.NewChain(cfg, logger, collector)
	if err != nil {
		return fmt.Errorf("building provider chain: %w", err)
	}

	// Hot-reload: pricing changes apply live, everything else needs a
	// restart.
	watcher, err := config.NewWatcher(cfgFile, logger)
	if err != nil {
		logger.Warn("config watching disabled", "error", err)
	} else {
		defer watcher.Close()
		go watcher.Watch(ctx, func(newCfg *config.Config) {
			if calculator != nil {
				calculator.Reload(pricingTable(newCfg.Usage.Pricing))
			}
		})
	}

	srv := server.New(server.Options{
		Config:     cfg,
		Chain:      chain,
		Limiter:    limiter,
		Collector:  collector,
		Store:      store,
		Calculator: calculator,
		Version:    Version,
		Logger:     logger,
	})

	logger.Info("helios starting",
		"version", Version,
		"address", cfg.Server.ListenAddress,
		"providers", chain.ProviderNames(),
		"rate_limit", cfg.RateLimit.RequestsPerMinute,
	)

	runErr := srv.Start(ctx)

	// Persist admission windows so restarts do not reset client budgets.
	if limiter != nil && backend != nil {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		if err := backend.Save(saveCtx, limiter.Snapshot()); err != nil {
			logger.Warn("failed to persist admission windows", "error", err)
		}
	}

	return runErr
}

func newRateLimitBackend(cfg config.RateLimitStorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return storage.NewMemoryBackend(), nil
	case "sqlite":
		return storage.NewSQLiteBackend(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown rate limit storage backend %q", cfg.Backend)
	}
}

func pricingTable(pricing map[string]config.ModelPricing) map[string]usage.Pricing {
	table := make(map[string]usage.Pricing, len(pricing))
	for model, p := range pricing {
		table[model] = usage.Pricing{
			InputPerMTok:  p.InputPerMTok,
			OutputPerMTok: p.OutputPerMTok,
		}
	}
	return table
}

// pruneLoop deletes usage records older than the retention window, once at
// startup and then daily.
func pruneLoop(ctx context.Context, store *usage.Store, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		pruneCtx, cancel := context.WithTimeout(ctx, time.Minute)
		if _, err := store.Prune(pruneCtx, time.Now().Add(-retention)); err != nil {
			logger.Warn("usage prune failed", "error", err)
		}
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
