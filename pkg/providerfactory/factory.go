package providerfactory

import (
	"fmt"
	"log/slog"

	"bookproxy/pkg/config"
	"bookproxy/pkg/providers"
	"bookproxy/pkg/providers/googlebooks"
	"bookproxy/pkg/providers/isbndb"
	"bookproxy/pkg/providers/openlibrary"
)

// NewProvider creates a new provider instance based on the configuration.
//
// Supported provider types:
//   - "googlebooks": Google Books volumes API
//   - "isbndb": ISBNdb v2 API (API key required)
//   - "openlibrary": Open Library search API
//
// The provider type is determined from the config.Type field. If not
// specified, it is inferred from the provider name.
//
// Example:
//
//	provider, err := NewProvider(providers.ProviderConfig{
//	    Name:    "googlebooks",
//	    Type:    "googlebooks",
//	    Timeout: 3 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
func NewProvider(cfg providers.ProviderConfig) (providers.Provider, error) {
	providerType := cfg.Type
	if providerType == "" {
		providerType = inferProviderType(cfg.Name)
		cfg.Type = providerType
	}

	slog.Debug("creating provider",
		"name", cfg.Name,
		"type", providerType,
		"base_url", cfg.BaseURL,
	)

	var (
		provider providers.Provider
		err      error
	)

	switch providerType {
	case config.ProviderGoogleBooks:
		provider, err = googlebooks.NewProvider(cfg)

	case config.ProviderISBNdb:
		provider, err = isbndb.NewProvider(cfg)

	case config.ProviderOpenLibrary:
		provider, err = openlibrary.NewProvider(cfg)

	default:
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: googlebooks, isbndb, openlibrary)", providerType),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Name, err)
	}

	return provider, nil
}

// FromConfig converts a configuration entry into adapter configuration.
func FromConfig(pc config.ProviderConfig, userAgent string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:              pc.Name,
		Type:              pc.Type,
		BaseURL:           pc.BaseURL,
		APIKey:            pc.APIKey,
		Timeout:           pc.Timeout,
		MaxRetries:        pc.MaxRetries,
		RequestsPerSecond: pc.RequestsPerSecond,
		UserAgent:         userAgent,
	}
}

// inferProviderType infers the provider type from the provider name.
func inferProviderType(name string) string {
	switch name {
	case "google", "googlebooks", "google-books":
		return config.ProviderGoogleBooks
	case "isbndb":
		return config.ProviderISBNdb
	case "openlibrary", "open-library":
		return config.ProviderOpenLibrary
	default:
		return name
	}
}
