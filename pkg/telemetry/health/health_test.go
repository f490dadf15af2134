package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestNew_DefaultTimeout(t *testing.T) {
	if got := New(0).checkTimeout; got != 2*time.Second {
		t.Errorf("checkTimeout = %v, want 2s", got)
	}
	if got := New(time.Second).checkTimeout; got != time.Second {
		t.Errorf("checkTimeout = %v, want 1s", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name   string
		checks map[string]struct {
			critical bool
			fn       CheckFunc
		}
		want string
	}{
		{name: "no checks", want: StatusReady},
		{
			name: "all healthy",
			checks: map[string]struct {
				critical bool
				fn       CheckFunc
			}{
				"cache_hot":  {true, ok},
				"cache_cold": {false, ok},
			},
			want: StatusReady,
		},
		{
			name: "non-critical down",
			checks: map[string]struct {
				critical bool
				fn       CheckFunc
			}{
				"cache_hot":  {true, ok},
				"cache_cold": {false, fail},
			},
			want: StatusDegraded,
		},
		{
			name: "critical down",
			checks: map[string]struct {
				critical bool
				fn       CheckFunc
			}{
				"providers":  {true, fail},
				"cache_cold": {false, fail},
			},
			want: StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check.critical, check.fn)
			}

			got := c.CheckReadiness(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %q, want %q", got.Status, tt.want)
			}
			if len(got.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(got.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", true, func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	got := c.CheckReadiness(context.Background())
	res := got.Checks["slow"]
	if res.Status != StatusUnhealthy || res.Message != "health check timeout" {
		t.Errorf("slow check = %+v, want timeout", res)
	}
}

func TestListChecks_Sorted(t *testing.T) {
	c := New(0)
	c.RegisterCheck("providers", true, nil)
	c.RegisterCheck("cache_hot", true, nil)
	c.RegisterCheck("cache_cold", false, nil)

	want := []string{"cache_cold", "cache_hot", "providers"}
	if got := c.ListChecks(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListChecks() = %v, want %v", got, want)
	}
}

func TestReadinessHandler(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("providers", true, func(context.Context) error { return errors.New("no providers") })

	rec := httptest.NewRecorder()
	c.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	var body HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["providers"].Message != "no providers" {
		t.Errorf("providers check = %+v", body.Checks["providers"])
	}
}

func TestLivenessHandler(t *testing.T) {
	c := New(0)

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodHead, http.StatusOK},
		{http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(tt.method, "/live", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.method == http.MethodHead && rec.Body.Len() != 0 {
				t.Error("HEAD response has a body")
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	info := NewVersionInfo("1.2.0", "abc123", "2026-10-18")

	rec := httptest.NewRecorder()
	VersionHandler(info).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var got VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != info {
		t.Errorf("version = %+v, want %+v", got, info)
	}
	if got.GoVersion == "" {
		t.Error("GoVersion empty")
	}
}
