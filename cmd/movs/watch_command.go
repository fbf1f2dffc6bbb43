package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"movs/internal/appconfig"
	"movs/internal/config"
	"movs/internal/configcache"
	"movs/internal/configloader"
	"movs/internal/logging"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the configuration fresh, reloading on an interval and on SIGHUP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			return runWatch(signalCtx, cfg, logger, hup)
		},
	}
}

// runWatch drives the loader until ctx ends. Each receive on reload triggers
// an extra cycle.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, reload <-chan os.Signal) error {
	logger = logging.NewComponentLogger(logger, "watch")

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another movs watch instance is already running")
	}
	defer func() { _ = lock.Unlock() }()

	client, err := newTMDBClient(cfg)
	if err != nil {
		return err
	}
	cache, err := configcache.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open config cache: %w", err)
	}
	defer cache.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := configloader.NewMetrics(registry)

	if cfg.Loader.MetricsBind != "" {
		server, addr, err := startMetricsServer(cfg.Loader.MetricsBind, registry, logger)
		if err != nil {
			return err
		}
		logger.Info("metrics endpoint listening", logging.String("addr", addr.String()))
		defer shutdownMetricsServer(server, logger)
	}

	triggers := make(chan configloader.Trigger)
	loader := configloader.New(ctx, triggers, client, cache,
		configloader.WithLogger(logger),
		configloader.WithMetrics(metrics),
	)
	defer loader.Close()

	configs := loader.SubscribeConfigs()
	failures := loader.SubscribeFailures()
	go reportConfigs(logger, configs)
	go reportFailures(logger, failures)

	send := func(reason string) bool {
		select {
		case triggers <- configloader.Trigger{}:
			logger.Debug("config reload requested", logging.String("reason", reason))
			return true
		case <-loader.Done():
			return false
		}
	}

	logger.Info("watching configuration",
		logging.Duration("refresh_interval", cfg.RefreshInterval()),
		logging.String("cache_backend", cfg.Cache.Backend))

	if !send("startup") {
		return nil
	}

	ticker := time.NewTicker(cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopping")
			return nil
		case <-ticker.C:
			if !send("interval") {
				return nil
			}
		case <-reload:
			if !send("sighup") {
				return nil
			}
		}
	}
}

func reportConfigs(logger *slog.Logger, sub *configloader.Subscription[appconfig.Config]) {
	for cfg := range sub.C() {
		logger.Info("configuration available",
			logging.String("image_base_url", cfg.ImageBaseURL),
			logging.Int("genre_count", len(cfg.Genres)))
	}
}

func reportFailures(logger *slog.Logger, sub *configloader.Subscription[configloader.Failure]) {
	for failure := range sub.C() {
		logger.Info("configuration refresh failed",
			logging.Uint64(logging.FieldCycle, failure.Cycle),
			logging.String(logging.FieldCorrelationID, failure.ID),
			logging.Bool("fallback", failure.Fallback))
	}
}

func startMetricsServer(bind string, registry *prometheus.Registry, logger *slog.Logger) (*http.Server, net.Addr, error) {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", bind, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.WarnWithContext(logger, "metrics server stopped",
				"metrics_server_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check loader.metrics_bind"),
				logging.String(logging.FieldImpact, "metrics are no longer exported"))
		}
	}()
	return server, listener.Addr(), nil
}

func shutdownMetricsServer(server *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Debug("metrics server shutdown", logging.Error(err))
	}
}
