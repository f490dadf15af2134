package cache

import (
	"errors"
	"time"

	"bookproxy/pkg/providers"
)

// SchemaVersion is bumped whenever the Entry encoding changes. Entries
// written under another version are read as misses.
const SchemaVersion = 1

// ErrMiss is returned by Manager.Get when neither tier has a usable entry.
var ErrMiss = errors.New("cache miss")

// Tier names a cache tier.
type Tier string

const (
	TierHot  Tier = "hot"
	TierCold Tier = "cold"
)

// Entry wraps a provider result with the metadata needed to age and
// expire it. Entries are immutable once written; a write replaces the
// whole entry.
type Entry struct {
	Key           string            `json:"key"`
	Result        *providers.Result `json:"result"`
	CreatedAt     time.Time         `json:"created_at"`
	TTL           time.Duration     `json:"ttl"`
	SchemaVersion int               `json:"schema_version"`

	// Tier records where the entry was read from. It is not persisted.
	Tier Tier `json:"-"`
}

// Age returns how long ago the entry was created.
func (e *Entry) Age(now time.Time) time.Duration {
	age := now.Sub(e.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}

// ExpiresAt returns the expiry time. The zero time means no expiry.
func (e *Entry) ExpiresAt() time.Time {
	if e.TTL <= 0 {
		return time.Time{}
	}
	return e.CreatedAt.Add(e.TTL)
}

// Expired reports whether the entry's TTL has elapsed at now.
func (e *Entry) Expired(now time.Time) bool {
	exp := e.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// Remaining returns the TTL left at now, or 0 for entries without expiry.
func (e *Entry) Remaining(now time.Time) time.Duration {
	exp := e.ExpiresAt()
	if exp.IsZero() {
		return 0
	}
	return exp.Sub(now)
}
