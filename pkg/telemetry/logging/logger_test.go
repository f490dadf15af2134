package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg.Writer = &buf
	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "json info", cfg: Config{Level: "info", Format: "json"}},
		{name: "text debug", cfg: Config{Level: "debug", Format: "text"}},
		{name: "defaults", cfg: Config{}},
		{name: "uppercase level", cfg: Config{Level: "WARN"}},
		{name: "bad level", cfg: Config{Level: "trace"}, wantErr: true},
		{name: "bad format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_ContextAttributes(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json"})

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithProvider(ctx, "googlebooks")
	ctx = WithCacheKey(ctx, "isbn:v1:9780451524935")
	logger.Slog().InfoContext(ctx, "lookup served", "cache", "MISS")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", entry["request_id"])
	}
	if entry["provider"] != "googlebooks" {
		t.Errorf("expected provider googlebooks, got %v", entry["provider"])
	}
	if entry["cache_key"] != "isbn:v1:9780451524935" {
		t.Errorf("expected cache_key to survive redaction, got %v", entry["cache_key"])
	}
	if entry["cache"] != "MISS" {
		t.Errorf("expected cache MISS, got %v", entry["cache"])
	}
}

func TestLogger_Redaction(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json", RedactPII: true})

	logger.Slog().Info("upstream call",
		"url", "https://www.googleapis.com/books/v1/volumes?q=dune&key=AIzaSecret123",
		"api_key", "supersecretkey",
		"client_ip", "203.0.113.7",
		"isbn", "9780451524935",
	)

	out := buf.String()
	for _, secret := range []string{"AIzaSecret123", "supersecretkey", "203.0.113.7"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output leaked %q: %s", secret, out)
		}
	}
	if !strings.Contains(out, "9780451524935") {
		t.Errorf("expected ISBN to be kept: %s", out)
	}

	entry := decodeLine(t, buf)
	if entry["api_key"] != "supe***" {
		t.Errorf("expected api_key prefix redaction, got %v", entry["api_key"])
	}
}

func TestLogger_RedactionDisabled(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json"})

	logger.Slog().Info("upstream call", "client_ip", "203.0.113.7")

	if !strings.Contains(buf.String(), "203.0.113.7") {
		t.Errorf("expected raw value without redaction: %s", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "warn", Format: "json"})

	logger.Slog().Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %s", buf.String())
	}

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel() error = %v", err)
	}
	if logger.Level() != slog.LevelDebug {
		t.Errorf("expected level debug, got %v", logger.Level())
	}

	derived := logger.Slog().With("component", "cache")
	derived.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected derived logger to follow the new level: %s", buf.String())
	}

	if err := logger.SetLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogger_WithAttrsRedacted(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json", RedactPII: true})

	logger.Slog().With("authorization", "Bearer abcdefgh").Info("request")

	if strings.Contains(buf.String(), "abcdefgh") {
		t.Errorf("expected With attributes to be redacted: %s", buf.String())
	}
}
