// Package config provides configuration management for the book lookup proxy.
//
// Configuration is loaded from a YAML file decoded over built-in defaults,
// overridden by environment variables, and validated as a whole.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention BOOKPROXY_SECTION_FIELD:
//
//   - BOOKPROXY_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - BOOKPROXY_CACHE_COLD_PATH overrides cache.cold.path
//   - BOOKPROXY_RATE_LIMIT_API_KEYS sets rate_limit.api_keys (comma separated)
//   - BOOKPROXY_PROVIDERS_ISBNDB_API_KEY overrides the api_key of the provider named "isbndb"
//
// # Provider Chain
//
// providers is an ordered list. Omitting it yields the default chain
// googlebooks (3s), isbndb (5s), openlibrary (8s). An isbndb entry without
// an API key stays in the configuration but is skipped when the chain is
// built, and /health reports it as unconfigured.
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and calls
// ReloadConfig after a debounce interval. Only settings that are read per
// request (log level, rate limit quotas and keys) take effect without a
// restart.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	cache:
//	  cold:
//	    driver: "sqlite"
//	    path: "/var/lib/bookproxy/cold.db"
//
//	providers:
//	  - type: googlebooks
//	    api_key: "${GOOGLE_BOOKS_KEY}"
//	  - type: openlibrary
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
