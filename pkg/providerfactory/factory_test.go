package providerfactory

import (
	"errors"
	"testing"
	"time"

	"bookproxy/pkg/providers"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      providers.ProviderConfig
		wantType string
	}{
		{
			name:     "google books",
			cfg:      providers.ProviderConfig{Name: "googlebooks", Type: "googlebooks", Timeout: 3 * time.Second},
			wantType: "googlebooks",
		},
		{
			name:     "isbndb",
			cfg:      providers.ProviderConfig{Name: "isbndb", Type: "isbndb", APIKey: "k", Timeout: 5 * time.Second},
			wantType: "isbndb",
		},
		{
			name:     "open library",
			cfg:      providers.ProviderConfig{Name: "openlibrary", Type: "openlibrary", Timeout: 8 * time.Second},
			wantType: "openlibrary",
		},
		{
			name:     "type inferred from name",
			cfg:      providers.ProviderConfig{Name: "open-library"},
			wantType: "openlibrary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.cfg)
			if err != nil {
				t.Fatalf("NewProvider() failed: %v", err)
			}
			defer provider.Close()

			if provider.GetName() != tt.cfg.Name {
				t.Errorf("expected provider name %s, got %s", tt.cfg.Name, provider.GetName())
			}
			if provider.GetType() != tt.wantType {
				t.Errorf("expected provider type %s, got %s", tt.wantType, provider.GetType())
			}
		})
	}
}

func TestNewProvider_UnsupportedType(t *testing.T) {
	_, err := NewProvider(providers.ProviderConfig{Name: "amazon", Type: "amazon"})
	if err == nil {
		t.Fatal("expected error for unsupported provider type")
	}

	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	if cfgErr.Field != "type" {
		t.Errorf("expected field 'type', got %q", cfgErr.Field)
	}
}

func TestNewProvider_ISBNdbWithoutKey(t *testing.T) {
	provider, err := NewProvider(providers.ProviderConfig{Name: "isbndb", Type: "isbndb"})
	if err != nil {
		t.Fatalf("expected provider without key to be created, got %v", err)
	}
	defer provider.Close()

	if provider.Configured() {
		t.Error("expected provider without key to be unconfigured")
	}
}

func TestInferProviderType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"google", "googlebooks"},
		{"googlebooks", "googlebooks"},
		{"isbndb", "isbndb"},
		{"openlibrary", "openlibrary"},
		{"mystery", "mystery"},
	}
	for _, tt := range tests {
		if got := inferProviderType(tt.name); got != tt.want {
			t.Errorf("inferProviderType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
