package providerfactory

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bookproxy/pkg/config"
	"bookproxy/pkg/providers"
)

// Manager holds the configured providers in chain order.
// It handles provider lifecycle (creation, replacement, shutdown).
//
// Manager is thread-safe and can be used concurrently.
type Manager struct {
	providers map[string]providers.Provider
	order     []string
	userAgent string
	mu        sync.RWMutex
}

// NewManager creates a new provider manager. userAgent is sent on every
// outbound request.
func NewManager(userAgent string) *Manager {
	return &Manager{
		providers: make(map[string]providers.Provider),
		userAgent: userAgent,
	}
}

// AddProvider appends a provider to the end of the chain.
// If a provider with the same name already exists, it is replaced in
// place and the old one is closed.
func (m *Manager) AddProvider(cfg providers.ProviderConfig) error {
	if cfg.UserAgent == "" {
		cfg.UserAgent = m.userAgent
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to add provider %q: %w", cfg.Name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.providers[cfg.Name]; ok {
		slog.Warn("replacing existing provider", "name", cfg.Name)
		existing.Close()
	} else {
		m.order = append(m.order, cfg.Name)
	}
	m.providers[cfg.Name] = provider

	slog.Info("provider added to chain",
		"name", cfg.Name,
		"type", provider.GetType(),
		"priority", len(m.order),
		"configured", provider.Configured(),
	)

	return nil
}

// RemoveProvider removes a provider from the chain and closes it.
func (m *Manager) RemoveProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	provider, ok := m.providers[name]
	if !ok {
		return fmt.Errorf("provider %q not found", name)
	}

	if err := provider.Close(); err != nil {
		slog.Error("error closing provider", "name", name, "error", err)
	}

	delete(m.providers, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	slog.Info("provider removed from chain",
		"name", name,
		"remaining_providers", len(m.order),
	)

	return nil
}

// GetProvider returns a provider by name.
func (m *Manager) GetProvider(name string) (providers.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provider, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not found", name)
	}

	return provider, nil
}

// Ordered returns the providers in chain order. The slice is a copy.
func (m *Manager) Ordered() []providers.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := make([]providers.Provider, 0, len(m.order))
	for _, name := range m.order {
		ordered = append(ordered, m.providers[name])
	}
	return ordered
}

// GetProviderNames returns the provider names in chain order.
func (m *Manager) GetProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.order...)
}

// ProviderCount returns the total number of providers.
func (m *Manager) ProviderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order)
}

// ConfiguredCount returns the number of providers with usable credentials.
func (m *Manager) ConfiguredCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, provider := range m.providers {
		if provider.Configured() {
			count++
		}
	}
	return count
}

// LoadFromConfig creates providers from configuration in list order.
// Disabled entries are skipped. Errors are collected and joined.
func (m *Manager) LoadFromConfig(configs []config.ProviderConfig) error {
	var errs []error

	for _, pc := range configs {
		if pc.Disabled {
			slog.Info("provider disabled by configuration", "name", pc.Name)
			continue
		}
		if err := m.AddProvider(FromConfig(pc, m.userAgent)); err != nil {
			errs = append(errs, err)
			slog.Error("failed to load provider",
				"name", pc.Name,
				"error", err,
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to load %d provider(s): %w", len(errs), errors.Join(errs...))
	}

	slog.Info("provider chain loaded", "order", m.GetProviderNames())
	return nil
}

// Close closes all providers.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, provider := range m.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %q: %w", name, err))
		}
	}

	m.providers = make(map[string]providers.Provider)
	m.order = nil

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("provider manager closed")
	return nil
}

// Status is the public health view of one provider. It never carries
// credentials, only whether they are present.
type Status struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Priority   int    `json:"priority"`
	Configured bool   `json:"configured"`
	TimeoutMs  int64  `json:"timeout_ms"`
	Healthy    bool   `json:"healthy"`
}

// Statuses returns the status of every provider in chain order. Priority
// is 1-based.
func (m *Manager) Statuses() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]Status, 0, len(m.order))
	for i, name := range m.order {
		p := m.providers[name]
		statuses = append(statuses, Status{
			Name:       name,
			Type:       p.GetType(),
			Priority:   i + 1,
			Configured: p.Configured(),
			TimeoutMs:  p.GetConfig().Timeout.Milliseconds(),
			Healthy:    p.IsHealthy(),
		})
	}
	return statuses
}

// GetHealthSummary returns a summary of provider health status.
func (m *Manager) GetHealthSummary() HealthSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := HealthSummary{
		Total:   len(m.providers),
		Details: make(map[string]providers.ProviderHealth),
	}

	for name, provider := range m.providers {
		health := provider.GetHealth()
		summary.Details[name] = health

		if health.IsHealthy {
			summary.Healthy++
		}
	}

	summary.Unhealthy = summary.Total - summary.Healthy

	return summary
}

// HealthSummary provides an overview of provider health across the chain.
type HealthSummary struct {
	// Total is the total number of providers
	Total int

	// Healthy is the number of healthy providers
	Healthy int

	// Unhealthy is the number of unhealthy providers
	Unhealthy int

	// Details contains per-provider health information
	Details map[string]providers.ProviderHealth
}
