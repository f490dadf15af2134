package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"bookproxy/pkg/cache"
	"bookproxy/pkg/cache/retention"
	"bookproxy/pkg/config"
	"bookproxy/pkg/proxy"
	"bookproxy/pkg/proxy/handlers"
	"bookproxy/pkg/proxy/middleware"
	"bookproxy/pkg/ratelimit"
	"bookproxy/pkg/telemetry/health"
	"bookproxy/pkg/telemetry/metrics"
	"bookproxy/pkg/telemetry/tracing"
)

// Options holds the components a Server routes requests to.
type Options struct {
	Config *config.Config

	Cache     *cache.Manager
	Resolver  handlers.Resolver
	Providers handlers.ProviderStatuses

	// Limiter may be nil to disable rate limiting.
	Limiter *ratelimit.Limiter

	// Retention may be nil when the cold tier is disabled.
	Retention *retention.Scheduler

	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Version health.VersionInfo
	Logger  *slog.Logger

	// Closers run in order after the HTTP server has drained.
	Closers []func() error
}

// Server is the book lookup HTTP server.
type Server struct {
	config    *config.Config
	cache     *cache.Manager
	limiter   *ratelimit.Limiter
	retention *retention.Scheduler
	tracer    *tracing.Tracer
	checker   *health.Checker
	logger    *slog.Logger
	closers   []func() error

	handler    http.Handler
	httpServer *http.Server

	mu           sync.RWMutex
	isRunning    bool
	shutdownOnce sync.Once
}

// New creates a server and builds its routes.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server config is required")
	}
	if opts.Cache == nil || opts.Resolver == nil || opts.Providers == nil {
		return nil, errors.New("cache, resolver and providers are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    opts.Config,
		cache:     opts.Cache,
		limiter:   opts.Limiter,
		retention: opts.Retention,
		tracer:    opts.Tracer,
		checker:   health.New(opts.Config.Telemetry.Health.CheckTimeout),
		logger:    logger,
		closers:   opts.Closers,
	}

	s.registerChecks(opts.Providers)
	s.handler = s.setupRoutes(opts)

	return s, nil
}

// registerChecks wires readiness checks. The cold tier is non-critical.
func (s *Server) registerChecks(p handlers.ProviderStatuses) {
	s.checker.RegisterCheck("hot_cache", true, s.cache.PingHot)
	if s.cache.ColdEnabled() {
		s.checker.RegisterCheck("cold_cache", false, s.cache.PingCold)
	}
	s.checker.RegisterCheck("providers", true, func(context.Context) error {
		for _, st := range p.Statuses() {
			if st.Configured {
				return nil
			}
		}
		return errors.New("no provider is configured")
	})
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes(opts Options) http.Handler {
	cfg := opts.Config

	lookupOpts := handlers.LookupOptions{
		Cache:                 opts.Cache,
		Resolver:              opts.Resolver,
		SearchTTL:             cfg.Cache.SearchTTL,
		ISBNTTL:               cfg.Cache.ISBNTTL,
		TrustForwardedHeaders: cfg.RateLimit.TrustForwardedHeaders,
		Tracer:                opts.Tracer,
		Logger:                s.logger,
	}
	if opts.Limiter != nil {
		lookupOpts.Limiter = opts.Limiter
	}
	lookup := handlers.NewLookupHandler(lookupOpts)

	route := func(path string, h http.Handler) http.Handler {
		return middleware.MetricsMiddleware(opts.Metrics, path)(h)
	}

	mux := http.NewServeMux()
	mux.Handle("/search", route("/search", lookup.Search()))
	mux.Handle("/isbn", route("/isbn", lookup.ISBN()))
	mux.Handle("/health", route("/health", handlers.NewHealthHandler(opts.Cache, opts.Providers, opts.Version.Version)))

	hc := cfg.Telemetry.Health
	mux.Handle(hc.LivenessPath, s.checker.LivenessHandler())
	mux.Handle(hc.ReadinessPath, s.checker.ReadinessHandler())
	mux.Handle(hc.VersionPath, health.VersionHandler(opts.Version))

	if cfg.Telemetry.Metrics.Enabled && opts.Metrics != nil {
		mux.Handle(cfg.Telemetry.Metrics.Path, opts.Metrics.Handler())
	}

	mux.HandleFunc("/", proxy.NotFound)

	// Apply middleware chain
	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(cfg.Server.RequestTimeout)(handler)
	handler = middleware.CORSMiddleware(cfg.Server.CORS)(handler)
	handler = tracing.HTTPMiddleware(opts.Tracer)(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	// Request ID is outermost so every log line and error body carries it.
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.mu.Unlock()

	if s.retention != nil {
		if err := s.retention.Start(ctx); err != nil {
			s.logger.Error("cold cache pruning not started", "error", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting book proxy", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Shutdown stops accepting connections, drains in-flight requests and
// background cache promotions, then releases every component.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.shutdownOnce.Do(func() {
		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		s.mu.RLock()
		httpServer := s.httpServer
		s.mu.RUnlock()

		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		if s.retention != nil {
			s.retention.Stop()
		}
		if err := s.cache.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.tracer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
		}
		for _, closeFn := range s.closers {
			if err := closeFn(); err != nil {
				errs = append(errs, err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("book proxy stopped")
	})

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Error("error during shutdown", "error", err)
		return err
	}
	return nil
}

// ApplyConfig applies the reloadable parts of cfg: rate limit quotas and
// API keys. Listener, cache and provider settings need a restart.
func (s *Server) ApplyConfig(cfg *config.Config) {
	if s.limiter != nil {
		s.limiter.SetQuotas(ratelimit.QuotasFromConfig(cfg.RateLimit))
		s.logger.Info("rate limit quotas reloaded",
			"strict", cfg.RateLimit.StrictLimit,
			"default", cfg.RateLimit.DefaultLimit,
			"authenticated", cfg.RateLimit.AuthenticatedLimit,
		)
	}
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Readiness runs the readiness checks.
func (s *Server) Readiness(ctx context.Context) health.HealthStatus {
	return s.checker.CheckReadiness(ctx)
}
