package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_DefaultConfig(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("expected default config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		errorField string
	}{
		{
			name:       "empty listen address",
			mutate:     func(c *Config) { c.Server.ListenAddress = "" },
			errorField: "server.listen_address",
		},
		{
			name:       "negative request timeout",
			mutate:     func(c *Config) { c.Server.RequestTimeout = -1 },
			errorField: "server.request_timeout",
		},
		{
			name:       "zero hot max entries",
			mutate:     func(c *Config) { c.Cache.Hot.MaxEntries = 0 },
			errorField: "cache.hot.max_entries",
		},
		{
			name:       "unknown cold driver",
			mutate:     func(c *Config) { c.Cache.Cold.Driver = "postgres" },
			errorField: "cache.cold.driver",
		},
		{
			name:       "bad prune schedule",
			mutate:     func(c *Config) { c.Cache.Cold.PruneSchedule = "every tuesday" },
			errorField: "cache.cold.prune_schedule",
		},
		{
			name:       "strict above default",
			mutate:     func(c *Config) { c.RateLimit.StrictLimit = 500 },
			errorField: "rate_limit.strict_limit",
		},
		{
			name:       "negative max clients",
			mutate:     func(c *Config) { c.RateLimit.MaxClients = -1 },
			errorField: "rate_limit.max_clients",
		},
		{
			name:       "blank api key",
			mutate:     func(c *Config) { c.RateLimit.APIKeys = []string{"ok", " "} },
			errorField: "rate_limit.api_keys[1]",
		},
		{
			name:       "unknown provider type",
			mutate:     func(c *Config) { c.Providers[0].Type = "amazon" },
			errorField: "providers[0].type",
		},
		{
			name:       "duplicate provider name",
			mutate:     func(c *Config) { c.Providers[1].Name = c.Providers[0].Name },
			errorField: "providers[1].name",
		},
		{
			name:       "relative base url",
			mutate:     func(c *Config) { c.Providers[2].BaseURL = "openlibrary.org" },
			errorField: "providers[2].base_url",
		},
		{
			name:       "too many retries",
			mutate:     func(c *Config) { c.Providers[0].MaxRetries = 9 },
			errorField: "providers[0].max_retries",
		},
		{
			name: "all providers disabled",
			mutate: func(c *Config) {
				for i := range c.Providers {
					c.Providers[i].Disabled = true
				}
			},
			errorField: "providers",
		},
		{
			name:       "invalid log level",
			mutate:     func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			errorField: "telemetry.logging.level",
		},
		{
			name: "invalid redact pattern",
			mutate: func(c *Config) {
				c.Telemetry.Logging.RedactPatterns = []RedactPattern{{Name: "bad", Pattern: "("}}
			},
			errorField: "telemetry.logging.redact_patterns[0].pattern",
		},
		{
			name:       "sample ratio out of range",
			mutate:     func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 },
			errorField: "telemetry.tracing.sample_ratio",
		},
		{
			name:       "readiness path without slash",
			mutate:     func(c *Config) { c.Telemetry.Health.ReadinessPath = "ready" },
			errorField: "telemetry.health.readiness_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.errorField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got: %v", tt.errorField, err)
			}
		})
	}
}

func TestValidate_ColdTierDisabledSkipsColdChecks(t *testing.T) {
	cfg := Default()
	cfg.Cache.Cold.Disabled = true
	cfg.Cache.Cold.Driver = "nonsense"
	cfg.Cache.Cold.PruneSchedule = "nonsense"

	if err := Validate(cfg); err != nil {
		t.Errorf("expected disabled cold tier to skip validation, got %v", err)
	}
}

func TestEnabledProviders(t *testing.T) {
	cfg := Default()
	cfg.Providers[1].Disabled = true

	got := cfg.EnabledProviders()
	if len(got) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(got))
	}
	if got[0].Name != "googlebooks" || got[1].Name != "openlibrary" {
		t.Errorf("unexpected order: %q, %q", got[0].Name, got[1].Name)
	}
}
