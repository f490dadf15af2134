package providerfactory

import (
	"reflect"
	"testing"
	"time"

	"bookproxy/pkg/config"
	"bookproxy/pkg/providers"
)

func defaultChain() []config.ProviderConfig {
	return config.Default().Providers
}

func TestManager_LoadFromConfig(t *testing.T) {
	m := NewManager("bookproxy/test")
	defer m.Close()

	if err := m.LoadFromConfig(defaultChain()); err != nil {
		t.Fatalf("LoadFromConfig() failed: %v", err)
	}

	want := []string{"googlebooks", "isbndb", "openlibrary"}
	if got := m.GetProviderNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected chain order %v, got %v", want, got)
	}

	ordered := m.Ordered()
	if len(ordered) != 3 || ordered[0].GetName() != "googlebooks" {
		t.Errorf("unexpected ordered providers %v", ordered)
	}
	if got := ordered[0].GetConfig().UserAgent; got != "bookproxy/test" {
		t.Errorf("expected user agent to propagate, got %q", got)
	}
}

func TestManager_LoadFromConfigSkipsDisabled(t *testing.T) {
	chain := defaultChain()
	chain[1].Disabled = true

	m := NewManager("")
	defer m.Close()

	if err := m.LoadFromConfig(chain); err != nil {
		t.Fatalf("LoadFromConfig() failed: %v", err)
	}
	if got := m.GetProviderNames(); !reflect.DeepEqual(got, []string{"googlebooks", "openlibrary"}) {
		t.Errorf("expected disabled provider to be skipped, got %v", got)
	}
}

func TestManager_LoadFromConfigCollectsErrors(t *testing.T) {
	m := NewManager("")
	defer m.Close()

	err := m.LoadFromConfig([]config.ProviderConfig{
		{Name: "googlebooks", Type: "googlebooks"},
		{Name: "bad", Type: "unknown"},
	})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if m.ProviderCount() != 1 {
		t.Errorf("expected valid provider to load, got %d", m.ProviderCount())
	}
}

func TestManager_Statuses(t *testing.T) {
	m := NewManager("")
	defer m.Close()

	if err := m.LoadFromConfig(defaultChain()); err != nil {
		t.Fatalf("LoadFromConfig() failed: %v", err)
	}

	statuses := m.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}

	want := []Status{
		{Name: "googlebooks", Type: "googlebooks", Priority: 1, Configured: true, TimeoutMs: 3000, Healthy: true},
		{Name: "isbndb", Type: "isbndb", Priority: 2, Configured: false, TimeoutMs: 5000, Healthy: true},
		{Name: "openlibrary", Type: "openlibrary", Priority: 3, Configured: true, TimeoutMs: 8000, Healthy: true},
	}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("expected %+v, got %+v", want, statuses)
	}
	if got := m.ConfiguredCount(); got != 2 {
		t.Errorf("expected 2 configured providers, got %d", got)
	}
}

func TestManager_ReplaceKeepsPosition(t *testing.T) {
	m := NewManager("")
	defer m.Close()

	for _, name := range []string{"googlebooks", "openlibrary"} {
		if err := m.AddProvider(providers.ProviderConfig{Name: name, Type: name, Timeout: time.Second}); err != nil {
			t.Fatalf("AddProvider(%s) failed: %v", name, err)
		}
	}
	if err := m.AddProvider(providers.ProviderConfig{Name: "googlebooks", Type: "googlebooks", Timeout: 2 * time.Second}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if got := m.GetProviderNames(); !reflect.DeepEqual(got, []string{"googlebooks", "openlibrary"}) {
		t.Errorf("expected replaced provider to keep its position, got %v", got)
	}
	p, _ := m.GetProvider("googlebooks")
	if p.GetConfig().Timeout != 2*time.Second {
		t.Errorf("expected replacement config, got %v", p.GetConfig().Timeout)
	}
}

func TestManager_RemoveProvider(t *testing.T) {
	m := NewManager("")
	defer m.Close()

	if err := m.LoadFromConfig(defaultChain()); err != nil {
		t.Fatalf("LoadFromConfig() failed: %v", err)
	}
	if err := m.RemoveProvider("isbndb"); err != nil {
		t.Fatalf("RemoveProvider() failed: %v", err)
	}
	if err := m.RemoveProvider("isbndb"); err == nil {
		t.Error("expected error removing missing provider")
	}
	if got := m.GetProviderNames(); !reflect.DeepEqual(got, []string{"googlebooks", "openlibrary"}) {
		t.Errorf("unexpected chain after removal %v", got)
	}

	summary := m.GetHealthSummary()
	if summary.Total != 2 || summary.Healthy != 2 || summary.Unhealthy != 0 {
		t.Errorf("unexpected health summary %+v", summary)
	}
}
