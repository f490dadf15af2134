package storage

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by store operations after Close.
var ErrClosed = errors.New("storage: store is closed")

// Metadata keys written alongside cold tier blobs.
const (
	MetaCreatedAt     = "created_at"
	MetaExpiresAt     = "expires_at"
	MetaTTLSeconds    = "ttl_seconds"
	MetaSchemaVersion = "schema_version"
	MetaProvider      = "provider"
)

// HotStore is the low-latency, size-limited key/value tier. Values expire
// after their TTL. Implementations must be safe for concurrent use; Put is
// last-write-wins per key.
type HotStore interface {
	// Get returns the value for key. ok is false when the key is absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key for ttl. A ttl <= 0 stores without expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error

	// Close releases resources. The store must not be used afterwards.
	Close() error
}

// Blob is a cold tier object: opaque data plus string metadata.
type Blob struct {
	Data     []byte
	Metadata map[string]string
}

// ColdStore is the high-capacity, higher-latency blob tier.
type ColdStore interface {
	// Get returns the blob for key. ok is false when the key is absent.
	// Expiry is not enforced on read; callers inspect Metadata.
	Get(ctx context.Context, key string) (blob *Blob, ok bool, err error)

	// Put stores data and metadata under key, replacing any previous blob.
	// A MetaExpiresAt entry (RFC 3339) makes the blob eligible for Prune.
	Put(ctx context.Context, key string, data []byte, metadata map[string]string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Prune deletes blobs whose expiry is before now and returns how many
	// were removed.
	Prune(ctx context.Context, now time.Time) (int, error)

	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error

	// Close releases resources. The store must not be used afterwards.
	Close() error
}

// ExpiresAt parses MetaExpiresAt. ok is false when the blob has no expiry.
func (b *Blob) ExpiresAt() (t time.Time, ok bool) {
	if b == nil || b.Metadata == nil {
		return time.Time{}, false
	}
	v, exists := b.Metadata[MetaExpiresAt]
	if !exists || v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
