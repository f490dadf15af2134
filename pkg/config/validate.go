package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"server.read_timeout", cfg.ReadTimeout},
		{"server.write_timeout", cfg.WriteTimeout},
		{"server.idle_timeout", cfg.IdleTimeout},
		{"server.shutdown_timeout", cfg.ShutdownTimeout},
		{"server.request_timeout", cfg.RequestTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, FieldError{
				Field:   d.field,
				Message: "timeout must be positive",
			})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "server.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	return errs
}

// validateCache validates the cache tier configuration.
func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	if cfg.SearchTTL <= 0 {
		errs = append(errs, FieldError{Field: "cache.search_ttl", Message: "search TTL must be positive"})
	}
	if cfg.ISBNTTL <= 0 {
		errs = append(errs, FieldError{Field: "cache.isbn_ttl", Message: "ISBN TTL must be positive"})
	}
	if cfg.FreshnessThreshold <= 0 {
		errs = append(errs, FieldError{Field: "cache.freshness_threshold", Message: "freshness threshold must be positive"})
	}
	if cfg.RefreshTimeout < 0 {
		errs = append(errs, FieldError{Field: "cache.refresh_timeout", Message: "refresh timeout must be non-negative"})
	}
	if cfg.PromotionTimeout <= 0 {
		errs = append(errs, FieldError{Field: "cache.promotion_timeout", Message: "promotion timeout must be positive"})
	}

	if cfg.Hot.MaxEntries <= 0 {
		errs = append(errs, FieldError{Field: "cache.hot.max_entries", Message: "max entries must be positive"})
	}
	if cfg.Hot.MaxTTL <= 0 {
		errs = append(errs, FieldError{Field: "cache.hot.max_ttl", Message: "max TTL must be positive"})
	}
	if cfg.Hot.CleanupInterval <= 0 {
		errs = append(errs, FieldError{Field: "cache.hot.cleanup_interval", Message: "cleanup interval must be positive"})
	}

	if cfg.Cold.Disabled {
		return errs
	}

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if !validDrivers[cfg.Cold.Driver] {
		errs = append(errs, FieldError{
			Field:   "cache.cold.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Cold.Driver),
		})
	}
	if cfg.Cold.Path == "" {
		errs = append(errs, FieldError{Field: "cache.cold.path", Message: "path is required when the cold tier is enabled"})
	}
	if cfg.Cold.MaxOpenConns < 0 {
		errs = append(errs, FieldError{Field: "cache.cold.max_open_conns", Message: "max open connections must be non-negative"})
	}
	if cfg.Cold.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "cache.cold.busy_timeout", Message: "busy timeout must be non-negative"})
	}
	if _, err := cron.ParseStandard(cfg.Cold.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "cache.cold.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Cold.PruneSchedule, err),
		})
	}

	return errs
}

// validateRateLimit validates the fixed window quota settings.
func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	if cfg.Disabled {
		return errs
	}

	if cfg.Window <= 0 {
		errs = append(errs, FieldError{Field: "rate_limit.window", Message: "window must be positive"})
	}

	limits := []struct {
		field string
		value int
	}{
		{"rate_limit.strict_limit", cfg.StrictLimit},
		{"rate_limit.default_limit", cfg.DefaultLimit},
		{"rate_limit.authenticated_limit", cfg.AuthenticatedLimit},
	}
	for _, l := range limits {
		if l.value <= 0 {
			errs = append(errs, FieldError{Field: l.field, Message: "limit must be positive"})
		}
	}

	if cfg.MaxClients <= 0 {
		errs = append(errs, FieldError{Field: "rate_limit.max_clients", Message: "max_clients must be positive"})
	}

	if cfg.StrictLimit > cfg.DefaultLimit {
		errs = append(errs, FieldError{
			Field:   "rate_limit.strict_limit",
			Message: "strict limit must not exceed the default limit",
		})
	}
	if cfg.DefaultLimit > cfg.AuthenticatedLimit {
		errs = append(errs, FieldError{
			Field:   "rate_limit.default_limit",
			Message: "default limit must not exceed the authenticated limit",
		})
	}

	for i, key := range cfg.APIKeys {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("rate_limit.api_keys[%d]", i),
				Message: "API key must not be empty",
			})
		}
	}

	return errs
}

// validateProviders validates the provider chain.
func validateProviders(providers []ProviderConfig) []FieldError {
	var errs []FieldError

	enabled := 0
	seen := make(map[string]bool)
	for i, provider := range providers {
		prefix := fmt.Sprintf("providers[%d]", i)

		if _, known := providerDefaults[provider.Type]; !known {
			errs = append(errs, FieldError{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("unsupported provider type %q: must be 'googlebooks', 'isbndb', or 'openlibrary'", provider.Type),
			})
		}

		if provider.Name == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "name is required"})
		} else if seen[provider.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate provider name %q", provider.Name),
			})
		}
		seen[provider.Name] = true

		if provider.BaseURL == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".base_url",
				Message: "base URL is required",
			})
		} else if u, err := url.Parse(provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".base_url",
				Message: fmt.Sprintf("invalid URL %q", provider.BaseURL),
			})
		}

		if provider.Timeout <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout must be positive",
			})
		}

		if provider.MaxRetries < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_retries",
				Message: "max retries must be non-negative",
			})
		}
		if provider.MaxRetries > 5 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_retries",
				Message: "max retries exceeds reasonable limit (5)",
			})
		}

		if provider.RequestsPerSecond < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".requests_per_second",
				Message: "requests per second must be non-negative",
			})
		}

		if !provider.Disabled {
			enabled++
		}
	}

	if enabled == 0 {
		errs = append(errs, FieldError{
			Field:   "providers",
			Message: "at least one provider must be enabled",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "tracing endpoint is required when tracing is enabled",
			})
		}
		if !validSamplers[cfg.Tracing.Sampler] {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	paths := []struct {
		field string
		value string
	}{
		{"telemetry.health.liveness_path", cfg.Health.LivenessPath},
		{"telemetry.health.readiness_path", cfg.Health.ReadinessPath},
		{"telemetry.health.version_path", cfg.Health.VersionPath},
	}
	for _, p := range paths {
		if !strings.HasPrefix(p.value, "/") {
			errs = append(errs, FieldError{Field: p.field, Message: "path must start with /"})
		}
	}
	if cfg.Health.CheckTimeout < 0 || cfg.Health.CheckTimeout > 60*time.Second {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout must be between 0 and 60s",
		})
	}

	return errs
}
