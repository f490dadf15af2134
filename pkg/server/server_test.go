package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"bookproxy/internal/testutil"
	"bookproxy/pkg/config"
	"bookproxy/pkg/proxy/types"
	"bookproxy/pkg/telemetry/health"
)

func testConfig(t *testing.T, upstream string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Cache.Cold.Path = filepath.Join(t.TempDir(), "cold.db")
	cfg.Providers = []config.ProviderConfig{
		{Name: "googlebooks", Type: config.ProviderGoogleBooks, BaseURL: upstream, Timeout: 2 * time.Second},
	}
	cfg.Server.ShutdownTimeout = 2 * time.Second
	config.ApplyDefaults(cfg)
	return cfg
}

func buildServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	srv, err := Build(cfg, health.NewVersionInfo("1.0.0-test", "abc123", "now"), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0)")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSearchEndToEnd(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()
	upstream.SetResponse("/volumes", testutil.MockResponse{Body: testutil.GoogleBooksVolumes("Dune", "Dune Messiah")})

	srv := buildServer(t, testConfig(t, upstream.URL()))
	h := srv.Handler()

	w := get(t, h, "/search?q=Dune")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if w.Header().Get(types.HeaderCache) != types.CacheMiss {
		t.Errorf("X-Cache = %q, want MISS", w.Header().Get(types.HeaderCache))
	}
	if w.Header().Get(types.HeaderRequestID) == "" {
		t.Error("missing X-Request-ID")
	}
	if w.Header().Get(types.HeaderRateLimitLimit) == "" {
		t.Error("missing rate limit headers")
	}
	if !strings.Contains(upstream.LastQuery(), "q=Dune") && !strings.Contains(upstream.LastQuery(), "q=dune") {
		t.Errorf("upstream query = %q", upstream.LastQuery())
	}

	var body types.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Provider != "googlebooks" || len(body.Items) != 2 || body.Items[0].VolumeInfo.Title != "Dune" {
		t.Errorf("unexpected body %+v", body)
	}

	w = get(t, h, "/search?q=dune")
	if w.Header().Get(types.HeaderCache) != types.CacheHitHot {
		t.Errorf("second X-Cache = %q, want HIT-HOT", w.Header().Get(types.HeaderCache))
	}
	if upstream.GetRequestCount() != 1 {
		t.Errorf("upstream requests = %d, want 1", upstream.GetRequestCount())
	}
}

func TestRoutes(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()

	srv := buildServer(t, testConfig(t, upstream.URL()))
	h := srv.Handler()

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/live", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/version", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/search", http.StatusBadRequest},
		{"/nope", http.StatusNotFound},
		{"/volumes", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, h, tt.path)
			if w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d, body %s", tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestUnknownPathEnvelope(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()

	h := buildServer(t, testConfig(t, upstream.URL())).Handler()

	w := get(t, h, "/missing")

	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusNotFound || body.RequestID == "" {
		t.Errorf("unexpected envelope %+v", body)
	}
	if body.RequestID != w.Header().Get(types.HeaderRequestID) {
		t.Errorf("requestId %q does not match header %q", body.RequestID, w.Header().Get(types.HeaderRequestID))
	}
}

func TestCORSPreflight(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()

	h := buildServer(t, testConfig(t, upstream.URL())).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()
	upstream.SetResponse("/volumes", testutil.MockResponse{Body: testutil.GoogleBooksVolumes("Dune")})

	cfg := testConfig(t, upstream.URL())
	cfg.RateLimit.Disabled = true
	cfg.Cache.Cold.Disabled = true

	h := buildServer(t, cfg).Handler()

	w := get(t, h, "/search?q=dune")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(types.HeaderRateLimitLimit) != "" {
		t.Error("rate limit headers set while disabled")
	}
}

func TestApplyConfigReloadsQuotas(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()
	upstream.SetResponse("/volumes", testutil.MockResponse{Body: testutil.GoogleBooksVolumes("Dune")})

	cfg := testConfig(t, upstream.URL())
	srv := buildServer(t, cfg)

	next := *cfg
	next.RateLimit.DefaultLimit = 1
	srv.ApplyConfig(&next)

	h := srv.Handler()
	if w := get(t, h, "/search?q=dune"); w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	w := get(t, h, "/search?q=dune")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", w.Code)
	}
	if w.Header().Get(types.HeaderRetryAfter) == "" {
		t.Error("missing Retry-After")
	}
}

func TestRateLimitSurvivesCacheChurn(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()
	upstream.SetResponse("/volumes", testutil.MockResponse{Body: testutil.GoogleBooksVolumes("Dune")})

	cfg := testConfig(t, upstream.URL())
	cfg.Cache.Cold.Disabled = true
	cfg.Cache.Hot.MaxEntries = 1
	cfg.RateLimit.StrictLimit = 1
	cfg.RateLimit.DefaultLimit = 3

	h := buildServer(t, cfg).Handler()

	// Every miss writes a new key into a one-entry hot tier.
	for i, q := range []string{"alpha", "beta", "gamma"} {
		w := get(t, h, "/search?q="+q)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, w.Code)
		}
		if got, want := w.Header().Get(types.HeaderRateLimitRemaining), strconv.Itoa(2-i); got != want {
			t.Errorf("request %d remaining = %q, want %q", i+1, got, want)
		}
	}

	if w := get(t, h, "/search?q=delta"); w.Code != http.StatusTooManyRequests {
		t.Errorf("fourth status = %d, want 429", w.Code)
	}
}

func TestServeAndShutdown(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()

	srv := buildServer(t, testConfig(t, upstream.URL()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	testutil.WaitForCondition(t, 2*time.Second, srv.IsRunning, "server did not start")

	resp, err := http.Get("http://" + ln.Addr().String() + "/live")
	if err != nil {
		t.Fatalf("GET /live: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /live = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("server still reports running")
	}

}

func TestReadinessWithoutConfiguredProvider(t *testing.T) {
	upstream := testutil.NewMockServer()
	defer upstream.Close()

	cfg := testConfig(t, upstream.URL())
	cfg.Providers = []config.ProviderConfig{{Name: "isbndb", Type: config.ProviderISBNdb, BaseURL: upstream.URL()}}

	srv := buildServer(t, cfg)

	status := srv.Readiness(context.Background())
	if status.Status != health.StatusNotReady {
		t.Errorf("readiness = %q, want %q", status.Status, health.StatusNotReady)
	}
	if status.Checks["providers"].Status == "" {
		t.Errorf("missing providers check in %+v", status.Checks)
	}
}
