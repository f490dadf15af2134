package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bookproxy/pkg/cache"
	"bookproxy/pkg/cache/retention"
	"bookproxy/pkg/cache/storage"
	"bookproxy/pkg/chain"
	"bookproxy/pkg/config"
	"bookproxy/pkg/providerfactory"
	"bookproxy/pkg/ratelimit"
	"bookproxy/pkg/telemetry/health"
	"bookproxy/pkg/telemetry/metrics"
	"bookproxy/pkg/telemetry/tracing"
)

// Build creates every component described by cfg and returns a server
// that owns them. Components created before a failure are released.
func Build(cfg *config.Config, info health.VersionInfo, logger *slog.Logger) (_ *Server, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, info.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	closers = append(closers, func() error { return tracer.Shutdown(context.Background()) })

	hot := storage.NewMemoryStore(storage.MemoryStoreConfig{
		MaxEntries:      cfg.Cache.Hot.MaxEntries,
		CleanupInterval: cfg.Cache.Hot.CleanupInterval,
		OnEvict: func(n int) {
			collector.RecordCacheEviction("hot", n)
		},
	})
	closers = append(closers, hot.Close)

	cacheOpts := cache.Options{
		Hot:                hot,
		FreshnessThreshold: cfg.Cache.FreshnessThreshold,
		RefreshTimeout:     cfg.Cache.RefreshTimeout,
		PromotionTimeout:   cfg.Cache.PromotionTimeout,
		HotMaxTTL:          cfg.Cache.Hot.MaxTTL,
		Metrics:            collector,
		Tracer:             tracer,
		Logger:             logger,
	}

	if !cfg.Cache.Cold.Disabled {
		cold, err := storage.NewSQLiteStore(storage.SQLiteStoreConfig{
			Driver:       cfg.Cache.Cold.Driver,
			Path:         cfg.Cache.Cold.Path,
			MaxOpenConns: cfg.Cache.Cold.MaxOpenConns,
			BusyTimeout:  cfg.Cache.Cold.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open cold cache: %w", err)
		}
		closers = append(closers, cold.Close)
		cacheOpts.Cold = cold
		logger.Info("cold cache opened", "driver", cold.Driver(), "path", cfg.Cache.Cold.Path)
	} else {
		logger.Info("cold cache disabled")
	}

	cacheManager, err := cache.NewManager(cacheOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	providerManager := providerfactory.NewManager(userAgent(info))
	closers = append(closers, providerManager.Close)
	if err := providerManager.LoadFromConfig(cfg.Providers); err != nil {
		return nil, err
	}
	if providerManager.ConfiguredCount() == 0 {
		logger.Warn("no provider has credentials; lookups will fail until one is configured")
	}

	resolver := chain.New(providerManager.Ordered(), chain.Options{
		Metrics: collector,
		Tracer:  tracer,
		Logger:  logger.With("component", "chain"),
	})

	var limiter *ratelimit.Limiter
	if !cfg.RateLimit.Disabled {
		counters := storage.NewMemoryStore(storage.MemoryStoreConfig{
			MaxEntries:      cfg.RateLimit.MaxClients,
			CleanupInterval: cfg.Cache.Hot.CleanupInterval,
		})
		closers = append(closers, counters.Close)
		limiter = ratelimit.New(counters, ratelimit.QuotasFromConfig(cfg.RateLimit), collector, logger.With("component", "ratelimit"))
	}

	var scheduler *retention.Scheduler
	if cacheManager.ColdEnabled() {
		scheduler = retention.NewScheduler(cacheManager, cfg.Cache.Cold.PruneSchedule, logger)
	}

	// The server shuts the tracer down itself; keep it out of the closers
	// handed over.
	owned := closers[1:]

	srv, err := New(Options{
		Config:    cfg,
		Cache:     cacheManager,
		Resolver:  resolver,
		Providers: providerManager,
		Limiter:   limiter,
		Retention: scheduler,
		Metrics:   collector,
		Tracer:    tracer,
		Version:   info,
		Logger:    logger,
		Closers:   reverse(owned),
	})
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// OpenColdStore opens the configured cold tier for offline maintenance.
func OpenColdStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	if cfg.Cache.Cold.Disabled {
		return nil, errors.New("cold cache is disabled in the configuration")
	}
	return storage.NewSQLiteStore(storage.SQLiteStoreConfig{
		Driver:       cfg.Cache.Cold.Driver,
		Path:         cfg.Cache.Cold.Path,
		MaxOpenConns: cfg.Cache.Cold.MaxOpenConns,
		BusyTimeout:  cfg.Cache.Cold.BusyTimeout,
	})
}

func userAgent(info health.VersionInfo) string {
	v := info.Version
	if v == "" {
		v = "dev"
	}
	return "bookproxy/" + v
}

func reverse(fns []func() error) []func() error {
	out := make([]func() error, 0, len(fns))
	for i := len(fns) - 1; i >= 0; i-- {
		out = append(out, fns[i])
	}
	return out
}
