package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "BOOKPROXY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default(), remaining zero values get
// defaults, and the result is validated. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention BOOKPROXY_SECTION_FIELD (e.g., BOOKPROXY_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path loads the built-in defaults.
//
// The loading sequence is:
// 1. Load YAML from file over the defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = Default()
	} else if cfg, err = decodeFile(path); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// decodeFile reads and decodes a YAML file on top of the defaults.
// ${VAR} references in the file are expanded from the environment.
func decodeFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format BOOKPROXY_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envDuration("SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	envBool("SERVER_CORS_ENABLED", &cfg.Server.CORS.Enabled)
	if val := os.Getenv(EnvPrefix + "SERVER_CORS_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(val)
	}

	// Cache overrides
	envDuration("CACHE_SEARCH_TTL", &cfg.Cache.SearchTTL)
	envDuration("CACHE_ISBN_TTL", &cfg.Cache.ISBNTTL)
	envDuration("CACHE_FRESHNESS_THRESHOLD", &cfg.Cache.FreshnessThreshold)
	envInt("CACHE_HOT_MAX_ENTRIES", &cfg.Cache.Hot.MaxEntries)
	envDuration("CACHE_HOT_MAX_TTL", &cfg.Cache.Hot.MaxTTL)
	envBool("CACHE_COLD_DISABLED", &cfg.Cache.Cold.Disabled)
	envString("CACHE_COLD_DRIVER", &cfg.Cache.Cold.Driver)
	envString("CACHE_COLD_PATH", &cfg.Cache.Cold.Path)
	envString("CACHE_COLD_PRUNE_SCHEDULE", &cfg.Cache.Cold.PruneSchedule)

	// Rate limit overrides
	envBool("RATE_LIMIT_DISABLED", &cfg.RateLimit.Disabled)
	envDuration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	envInt("RATE_LIMIT_STRICT_LIMIT", &cfg.RateLimit.StrictLimit)
	envInt("RATE_LIMIT_DEFAULT_LIMIT", &cfg.RateLimit.DefaultLimit)
	envInt("RATE_LIMIT_AUTHENTICATED_LIMIT", &cfg.RateLimit.AuthenticatedLimit)
	envBool("RATE_LIMIT_TRUST_FORWARDED_HEADERS", &cfg.RateLimit.TrustForwardedHeaders)
	envInt("RATE_LIMIT_MAX_CLIENTS", &cfg.RateLimit.MaxClients)
	if val := os.Getenv(EnvPrefix + "RATE_LIMIT_API_KEYS"); val != "" {
		cfg.RateLimit.APIKeys = splitList(val)
	}

	// Provider overrides, keyed by provider name
	for i := range cfg.Providers {
		applyProviderEnvOverrides(&cfg.Providers[i])
	}

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// applyProviderEnvOverrides applies environment variable overrides for a specific provider.
// Provider environment variables follow the format BOOKPROXY_PROVIDERS_<NAME>_<FIELD>
// where NAME is the uppercase provider name with non-alphanumerics replaced by '_'.
func applyProviderEnvOverrides(p *ProviderConfig) {
	name := p.Name
	if name == "" {
		name = p.Type
	}
	prefix := "PROVIDERS_" + envName(name) + "_"

	envString(prefix+"BASE_URL", &p.BaseURL)
	envString(prefix+"API_KEY", &p.APIKey)
	envDuration(prefix+"TIMEOUT", &p.Timeout)
	envInt(prefix+"MAX_RETRIES", &p.MaxRetries)
	envBool(prefix+"DISABLED", &p.Disabled)
}

// envName converts a provider name to its environment variable form.
func envName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

// splitList splits a comma separated value and drops empty elements.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
