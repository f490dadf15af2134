package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 25 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 86400

	// Cache defaults
	DefaultSearchTTL          = 30 * 24 * time.Hour
	DefaultISBNTTL            = 365 * 24 * time.Hour
	DefaultFreshnessThreshold = 24 * time.Hour
	DefaultRefreshTimeout     = 100 * time.Millisecond
	DefaultPromotionTimeout   = 2 * time.Second
	DefaultHotMaxEntries      = 10000
	DefaultHotMaxTTL          = 24 * time.Hour
	DefaultHotCleanupInterval = time.Minute
	DefaultColdDriver         = "sqlite"
	DefaultColdPath           = "data/cold-cache.db"
	DefaultColdMaxOpenConns   = 10
	DefaultColdBusyTimeout    = 5 * time.Second
	DefaultColdPruneSchedule  = "@hourly"

	// Rate limit defaults
	DefaultRateLimitWindow        = time.Hour
	DefaultRateLimitStrict        = 20
	DefaultRateLimitDefault       = 100
	DefaultRateLimitAuthenticated = 1000
	DefaultRateLimitMaxClients    = 100000

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedactPII   = true
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "bookproxy"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingService     = "bookproxy"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultLivenessPath       = "/live"
	DefaultReadinessPath      = "/ready"
	DefaultVersionPath        = "/version"
	DefaultHealthCheckTimeout = 2 * time.Second
)

// Provider types understood by the provider factory.
const (
	ProviderGoogleBooks = "googlebooks"
	ProviderISBNdb      = "isbndb"
	ProviderOpenLibrary = "openlibrary"
)

// providerDefaults holds the per-type base URL and timeout. The primary
// provider gets the shortest timeout; slower community catalogs get more.
var providerDefaults = map[string]struct {
	baseURL string
	timeout time.Duration
}{
	ProviderGoogleBooks: {"https://www.googleapis.com/books/v1", 3 * time.Second},
	ProviderISBNdb:      {"https://api2.isbndb.com", 5 * time.Second},
	ProviderOpenLibrary: {"https://openlibrary.org", 8 * time.Second},
}

// DefaultRequestDurationBuckets are the request duration histogram buckets.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Default returns a configuration with every default applied and the
// standard three-provider chain. LoadConfig decodes YAML on top of it so
// boolean defaults survive fields that are absent from the file.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{Enabled: DefaultCORSEnabled},
		},
		Providers: []ProviderConfig{
			{Type: ProviderGoogleBooks},
			{Type: ProviderISBNdb},
			{Type: ProviderOpenLibrary},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactPII: DefaultLoggingRedactPII},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{OTLP: OTLPConfig{Insecure: true}},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	applyCacheDefaults(&cfg.Cache)

	// Rate limit defaults
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = DefaultRateLimitWindow
	}
	if cfg.RateLimit.StrictLimit == 0 {
		cfg.RateLimit.StrictLimit = DefaultRateLimitStrict
	}
	if cfg.RateLimit.DefaultLimit == 0 {
		cfg.RateLimit.DefaultLimit = DefaultRateLimitDefault
	}
	if cfg.RateLimit.AuthenticatedLimit == 0 {
		cfg.RateLimit.AuthenticatedLimit = DefaultRateLimitAuthenticated
	}
	if cfg.RateLimit.MaxClients == 0 {
		cfg.RateLimit.MaxClients = DefaultRateLimitMaxClients
	}

	// Provider defaults - applied to each provider by type
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.Name == "" {
			p.Name = p.Type
		}
		d, known := providerDefaults[p.Type]
		if !known {
			continue
		}
		if p.BaseURL == "" {
			p.BaseURL = d.baseURL
		}
		if p.Timeout == 0 {
			p.Timeout = d.timeout
		}
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-API-Key", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{
			"X-Request-ID", "X-Cache", "X-Cache-Age", "X-Provider",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After",
		}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

// applyCacheDefaults applies default values to both cache tiers.
func applyCacheDefaults(c *CacheConfig) {
	if c.SearchTTL == 0 {
		c.SearchTTL = DefaultSearchTTL
	}
	if c.ISBNTTL == 0 {
		c.ISBNTTL = DefaultISBNTTL
	}
	if c.FreshnessThreshold == 0 {
		c.FreshnessThreshold = DefaultFreshnessThreshold
	}
	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = DefaultRefreshTimeout
	}
	if c.PromotionTimeout == 0 {
		c.PromotionTimeout = DefaultPromotionTimeout
	}

	if c.Hot.MaxEntries == 0 {
		c.Hot.MaxEntries = DefaultHotMaxEntries
	}
	if c.Hot.MaxTTL == 0 {
		c.Hot.MaxTTL = DefaultHotMaxTTL
	}
	if c.Hot.CleanupInterval == 0 {
		c.Hot.CleanupInterval = DefaultHotCleanupInterval
	}

	if c.Cold.Driver == "" {
		c.Cold.Driver = DefaultColdDriver
	}
	if c.Cold.Path == "" {
		c.Cold.Path = DefaultColdPath
	}
	if c.Cold.MaxOpenConns == 0 {
		c.Cold.MaxOpenConns = DefaultColdMaxOpenConns
	}
	if c.Cold.BusyTimeout == 0 {
		c.Cold.BusyTimeout = DefaultColdBusyTimeout
	}
	if c.Cold.PruneSchedule == "" {
		c.Cold.PruneSchedule = DefaultColdPruneSchedule
	}
}

// applyTelemetryDefaults applies default values to telemetry configuration.
func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.RequestDurationBuckets) == 0 {
		t.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingService
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if t.Tracing.SkipPaths == nil {
		t.Tracing.SkipPaths = []string{DefaultLivenessPath, DefaultReadinessPath, DefaultMetricsPath}
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultReadinessPath
	}
	if t.Health.VersionPath == "" {
		t.Health.VersionPath = DefaultVersionPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
