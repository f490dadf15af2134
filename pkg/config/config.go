package config

import "time"

// Config is the root configuration structure for the book lookup proxy.
// It contains the HTTP server, cache tiers, rate limiting, the ordered
// provider chain and telemetry settings.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Cache contains configuration for the hot and cold cache tiers and the
	// logical TTLs of cached lookups.
	Cache CacheConfig `yaml:"cache"`

	// RateLimit contains the per-client fixed window quotas.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Providers is the ordered provider chain. The first entry is tried
	// first; later entries are fallbacks.
	Providers []ProviderConfig `yaml:"providers"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the sum of the provider timeouts.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single lookup request,
	// including every provider attempt.
	// Default: 25s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-API-Key", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: the diagnostic headers set by the lookup handlers.
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 86400 (1 day)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// CacheConfig contains configuration for the two-tier lookup cache.
type CacheConfig struct {
	// SearchTTL is the logical lifetime of a cached search result.
	// Default: 720h (30 days)
	SearchTTL time.Duration `yaml:"search_ttl"`

	// ISBNTTL is the logical lifetime of a cached ISBN lookup.
	// Default: 8760h (1 year)
	ISBNTTL time.Duration `yaml:"isbn_ttl"`

	// FreshnessThreshold is the entry age after which a hot hit triggers a
	// bounded cold tier refresh race.
	// Default: 24h
	FreshnessThreshold time.Duration `yaml:"freshness_threshold"`

	// RefreshTimeout bounds the cold tier refresh race for stale hot hits.
	// Default: 100ms
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`

	// PromotionTimeout bounds a background cold to hot promotion write.
	// Default: 2s
	PromotionTimeout time.Duration `yaml:"promotion_timeout"`

	// Hot contains hot tier configuration.
	Hot HotCacheConfig `yaml:"hot"`

	// Cold contains cold tier configuration.
	Cold ColdCacheConfig `yaml:"cold"`
}

// HotCacheConfig contains configuration for the in-memory hot tier.
type HotCacheConfig struct {
	// MaxEntries bounds the number of keys held; least recently used keys
	// are evicted first.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`

	// MaxTTL caps the TTL of any hot tier write.
	// Default: 24h
	MaxTTL time.Duration `yaml:"max_ttl"`

	// CleanupInterval is how often expired keys are swept.
	// Default: 1m
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// ColdCacheConfig contains configuration for the SQLite cold tier.
type ColdCacheConfig struct {
	// Disabled turns the cold tier off; lookups then use the hot tier only.
	// Default: false
	Disabled bool `yaml:"disabled"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the SQLite database file path.
	// Default: "data/cold-cache.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// PruneSchedule is the cron expression for deleting expired entries.
	// Default: "@hourly"
	PruneSchedule string `yaml:"prune_schedule"`
}

// RateLimitConfig contains per-client fixed window rate limit settings.
type RateLimitConfig struct {
	// Disabled turns rate limiting off.
	// Default: false
	Disabled bool `yaml:"disabled"`

	// Window is the fixed window length.
	// Default: 1h
	Window time.Duration `yaml:"window"`

	// StrictLimit applies to clients with missing or automated user agents.
	// Default: 20
	StrictLimit int `yaml:"strict_limit"`

	// DefaultLimit applies to anonymous clients.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// AuthenticatedLimit applies to clients presenting a configured API key.
	// Default: 1000
	AuthenticatedLimit int `yaml:"authenticated_limit"`

	// APIKeys is the set of pre-shared keys that grant the authenticated tier.
	// Usually supplied through BOOKPROXY_RATE_LIMIT_API_KEYS.
	APIKeys []string `yaml:"api_keys"`

	// TrustForwardedHeaders makes the client IP come from X-Forwarded-For
	// or X-Real-IP. Enable only behind a trusted edge.
	// Default: false
	TrustForwardedHeaders bool `yaml:"trust_forwarded_headers"`

	// MaxClients bounds the number of window counters held. Counters live
	// in their own store, apart from cached results.
	// Default: 100000
	MaxClients int `yaml:"max_clients"`
}

// ProviderConfig contains configuration for a single upstream provider.
type ProviderConfig struct {
	// Name identifies the provider in headers, logs and metrics.
	// Default: the provider type.
	Name string `yaml:"name"`

	// Type selects the adapter.
	// Options: "googlebooks", "isbndb", "openlibrary"
	Type string `yaml:"type"`

	// BaseURL is the base URL for the provider's API endpoint.
	// Default: the public endpoint for the type.
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for the provider. Required for
	// isbndb, optional for googlebooks.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single attempt against this provider.
	// Default: 3s googlebooks, 5s isbndb, 8s openlibrary
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for retryable upstream failures
	// within the timeout.
	// Default: 0
	MaxRetries int `yaml:"max_retries"`

	// RequestsPerSecond throttles outbound calls (0 = unlimited).
	// Default: 0
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Disabled removes the provider from the chain.
	// Default: false
	Disabled bool `yaml:"disabled"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables redaction of API keys and client IPs in logs.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "bookproxy"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "bookproxy"
	ServiceName string `yaml:"service_name"`

	// SkipPaths are request paths that never start a root span.
	// Default: ["/live", "/ready", "/metrics"]
	SkipPaths []string `yaml:"skip_paths"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/live"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// EnabledProviders returns the providers that take part in the chain, in
// chain order.
func (c *Config) EnabledProviders() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(c.Providers))
	for _, p := range c.Providers {
		if !p.Disabled {
			out = append(out, p)
		}
	}
	return out
}
