package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bookproxy/pkg/providers"
)

// RespondFunc scripts a MockProvider answer.
type RespondFunc func(ctx context.Context, req providers.Request) (*providers.Result, error)

// MockProvider is a scripted implementation of providers.Provider.
type MockProvider struct {
	name       string
	provType   string
	configured bool
	config     providers.ProviderConfig

	mu      sync.RWMutex
	respond RespondFunc
	delay   time.Duration
	healthy bool

	calls atomic.Int32
}

// NewMockProvider creates a configured, healthy mock provider that returns
// an empty result until Respond is called.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:       name,
		provType:   "mock",
		configured: true,
		healthy:    true,
		config:     providers.ProviderConfig{Name: name, Type: "mock", Timeout: time.Second},
	}
}

// WithTimeout sets the provider timeout the chain applies.
func (m *MockProvider) WithTimeout(d time.Duration) *MockProvider {
	m.config.Timeout = d
	return m
}

// WithConfigured sets whether the provider reports credentials.
func (m *MockProvider) WithConfigured(configured bool) *MockProvider {
	m.configured = configured
	return m
}

// Respond scripts the provider's answer.
func (m *MockProvider) Respond(fn RespondFunc) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
	return m
}

// ReturnTitles scripts a result with one volume per title.
func (m *MockProvider) ReturnTitles(titles ...string) *MockProvider {
	return m.Respond(func(context.Context, providers.Request) (*providers.Result, error) {
		return Result(m.name, titles...), nil
	})
}

// ReturnError scripts a failure.
func (m *MockProvider) ReturnError(err error) *MockProvider {
	return m.Respond(func(context.Context, providers.Request) (*providers.Result, error) {
		return nil, err
	})
}

// WithDelay makes every call wait d or until the context is done.
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// SetHealthy sets the reported health status.
func (m *MockProvider) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = healthy
}

// Calls returns how many lookups reached the provider.
func (m *MockProvider) Calls() int {
	return int(m.calls.Load())
}

func (m *MockProvider) do(ctx context.Context, req providers.Request) (*providers.Result, error) {
	m.calls.Add(1)

	m.mu.RLock()
	respond, delay := m.respond, m.delay
	m.mu.RUnlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if respond == nil {
		return &providers.Result{Provider: m.name, Volumes: []providers.Volume{}}, nil
	}
	return respond(ctx, req)
}

// Search implements providers.Provider.
func (m *MockProvider) Search(ctx context.Context, req providers.Request) (*providers.Result, error) {
	return m.do(ctx, req)
}

// Lookup implements providers.Provider.
func (m *MockProvider) Lookup(ctx context.Context, req providers.Request) (*providers.Result, error) {
	return m.do(ctx, req)
}

// GetName returns the provider name.
func (m *MockProvider) GetName() string {
	return m.name
}

// GetType returns the provider type.
func (m *MockProvider) GetType() string {
	return m.provType
}

// GetConfig returns the provider configuration.
func (m *MockProvider) GetConfig() providers.ProviderConfig {
	return m.config
}

// Configured reports whether the provider has credentials.
func (m *MockProvider) Configured() bool {
	return m.configured
}

// IsHealthy returns the current health status.
func (m *MockProvider) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

// GetHealth returns the health status.
func (m *MockProvider) GetHealth() providers.ProviderHealth {
	return providers.ProviderHealth{IsHealthy: m.IsHealthy()}
}

// Close is a no-op.
func (m *MockProvider) Close() error {
	return nil
}

// Result builds a result with one volume per title.
func Result(provider string, titles ...string) *providers.Result {
	volumes := make([]providers.Volume, 0, len(titles))
	for i, title := range titles {
		volumes = append(volumes, Volume(provider, i, title))
	}
	return &providers.Result{Provider: provider, TotalItems: len(volumes), Volumes: volumes}
}

// Volume builds a normalized volume.
func Volume(provider string, i int, title string) providers.Volume {
	return providers.NormalizeVolume(providers.Volume{
		ID: provider + "-" + string(rune('a'+i%26)),
		VolumeInfo: providers.VolumeInfo{
			Title:   title,
			Authors: []string{"Frank Herbert"},
		},
	})
}

var _ providers.Provider = (*MockProvider)(nil)
