package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"bookproxy/pkg/cache/storage"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64; rv:131.0) Gecko/20100101 Firefox/131.0"

var testQuotas = Quotas{
	Window:        time.Hour,
	Strict:        2,
	Default:       3,
	Authenticated: 5,
	APIKeys:       []string{"team-key-1", "team-key-2"},
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) Put(context.Context, string, []byte, time.Duration) error {
	return f.err
}
func (f failingStore) Delete(context.Context, string) error { return f.err }
func (f failingStore) Ping(context.Context) error           { return f.err }
func (f failingStore) Close() error                         { return nil }

func newTestLimiter(t *testing.T, store storage.HotStore) (*Limiter, *time.Time) {
	t.Helper()
	if store == nil {
		mem := storage.NewMemoryStore(storage.MemoryStoreConfig{})
		t.Cleanup(func() { mem.Close() })
		store = mem
	}

	l := New(store, testQuotas, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_AllowUntilCeiling(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, nil)
	client := ClientContext{IP: "203.0.113.7", UserAgent: browserUA, ConnToken: "HTTP/1.1/en-US"}

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, client)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !d.Allowed {
			t.Fatalf("request %d denied", i)
		}
		if d.Tier != TierDefault || d.Limit != 3 || d.Remaining != 3-i {
			t.Errorf("request %d decision = %+v", i, d)
		}
	}

	d, _ := l.Allow(ctx, client)
	if d.Allowed {
		t.Fatal("request over ceiling allowed")
	}
	if d.RetryAfter != time.Hour {
		t.Errorf("RetryAfter = %v, want 1h", d.RetryAfter)
	}
}

// A counter at ceiling-1 allows exactly one more request, then denies
// with a positive RetryAfter.
func TestLimiter_Boundary(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore(storage.MemoryStoreConfig{})
	defer mem.Close()
	l, now := newTestLimiter(t, mem)

	client := ClientContext{IP: "198.51.100.1", UserAgent: browserUA}
	key := KeyPrefix + Fingerprint(client)

	start := now.Add(-20 * time.Minute)
	raw, _ := json.Marshal(counter{Count: testQuotas.Default - 1, WindowStart: start.UnixMilli()})
	_ = mem.Put(ctx, key, raw, 40*time.Minute)

	d, _ := l.Allow(ctx, client)
	if !d.Allowed || d.Remaining != 0 {
		t.Fatalf("decision at ceiling-1 = %+v, want allowed with 0 remaining", d)
	}

	stored, _, _ := mem.Get(ctx, key)
	var c counter
	_ = json.Unmarshal(stored, &c)
	if c.Count != testQuotas.Default {
		t.Errorf("stored count = %d, want %d", c.Count, testQuotas.Default)
	}
	if c.WindowStart != start.UnixMilli() {
		t.Error("window start moved inside the window")
	}

	d, _ = l.Allow(ctx, client)
	if d.Allowed {
		t.Fatal("request at ceiling allowed")
	}
	if d.RetryAfter <= 0 || d.RetryAfter != 40*time.Minute {
		t.Errorf("RetryAfter = %v, want 40m", d.RetryAfter)
	}
	if !d.ResetAt.Equal(start.Add(time.Hour)) {
		t.Errorf("ResetAt = %v, want %v", d.ResetAt, start.Add(time.Hour))
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	ctx := context.Background()
	l, now := newTestLimiter(t, nil)
	client := ClientContext{IP: "192.0.2.10", UserAgent: "curl/8.4.0"}

	for i := 0; i < 2; i++ {
		_, _ = l.Allow(ctx, client)
	}
	if d, _ := l.Allow(ctx, client); d.Allowed {
		t.Fatal("strict client allowed past its ceiling")
	}

	*now = now.Add(time.Hour)
	d, _ := l.Allow(ctx, client)
	if !d.Allowed || d.Remaining != 1 {
		t.Errorf("decision after window = %+v, want allowed with 1 remaining", d)
	}
}

func TestLimiter_RetryAfterAtLeastOneSecond(t *testing.T) {
	ctx := context.Background()
	l, now := newTestLimiter(t, nil)
	client := ClientContext{IP: "192.0.2.11", UserAgent: "wget/1.21"}

	_, _ = l.Allow(ctx, client)
	_, _ = l.Allow(ctx, client)

	*now = now.Add(time.Hour - 200*time.Millisecond)
	d, _ := l.Allow(ctx, client)
	if d.Allowed {
		t.Fatal("allowed")
	}
	if d.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", d.RetryAfter)
	}
}

func TestLimiter_FailOpen(t *testing.T) {
	l, _ := newTestLimiter(t, failingStore{err: errors.New("kv unavailable")})

	d, err := l.Allow(context.Background(), ClientContext{IP: "192.0.2.1", UserAgent: browserUA})
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !d.Allowed || !d.Degraded {
		t.Errorf("decision = %+v, want allowed and degraded", d)
	}
}

func TestLimiter_ContextCancelled(t *testing.T) {
	l, _ := newTestLimiter(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Allow(ctx, ClientContext{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Allow() error = %v, want context.Canceled", err)
	}
}

func TestLimiter_SetQuotas(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, nil)
	client := ClientContext{IP: "192.0.2.20", UserAgent: browserUA, APIKey: "new-key"}

	if d, _ := l.Allow(ctx, client); d.Tier != TierDefault {
		t.Fatalf("tier before reload = %s", d.Tier)
	}

	q := testQuotas
	q.APIKeys = []string{"new-key"}
	q.Authenticated = 50
	l.SetQuotas(q)

	d, _ := l.Allow(ctx, client)
	if d.Tier != TierAuthenticated || d.Limit != 50 {
		t.Errorf("decision after reload = %+v", d)
	}
	// Same fingerprint, same counter: the earlier request still counts.
	if d.Remaining != 48 {
		t.Errorf("Remaining = %d, want 48", d.Remaining)
	}
}

func TestLimiter_CorruptCounterStartsFresh(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore(storage.MemoryStoreConfig{})
	defer mem.Close()
	l, _ := newTestLimiter(t, mem)

	client := ClientContext{IP: "192.0.2.30", UserAgent: browserUA}
	_ = mem.Put(ctx, KeyPrefix+Fingerprint(client), []byte("not json"), time.Hour)

	d, _ := l.Allow(ctx, client)
	if !d.Allowed || d.Remaining != 2 {
		t.Errorf("decision = %+v", d)
	}
}
