package providers

import (
	"time"

	"bookproxy/pkg/validate"
)

// RequestKind distinguishes the two lookups a provider can serve.
type RequestKind string

const (
	// KindSearch is a free-text volume search.
	KindSearch RequestKind = "search"

	// KindISBN is a single-volume ISBN lookup.
	KindISBN RequestKind = "isbn"
)

// Request is a provider-agnostic lookup. Exactly one of Search or ISBN is
// set, matching Kind.
type Request struct {
	Kind   RequestKind
	Search *validate.SearchQuery
	ISBN   validate.ISBNKey
}

// SearchRequest wraps a validated search query.
func SearchRequest(q *validate.SearchQuery) Request {
	return Request{Kind: KindSearch, Search: q}
}

// ISBNRequest wraps a validated ISBN.
func ISBNRequest(isbn validate.ISBNKey) Request {
	return Request{Kind: KindISBN, ISBN: isbn}
}

// Volume is the canonical book record every adapter normalizes into.
// Its JSON form is flat; handlers split it into id and volumeInfo.
type Volume struct {
	ID string `json:"id"`
	VolumeInfo
}

// VolumeInfo holds the descriptive fields of a Volume. Absent values are
// empty strings and empty lists, never null.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	ImageLinks          ImageLinks           `json:"imageLinks"`
	Language            string               `json:"language"`
	PreviewLink         string               `json:"previewLink"`
	InfoLink            string               `json:"infoLink"`
}

// IndustryIdentifier is a typed identifier such as ISBN_13.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Identifier types used in IndustryIdentifier.Type.
const (
	IdentifierISBN10 = "ISBN_10"
	IdentifierISBN13 = "ISBN_13"
)

// ImageLinks holds cover image URLs.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// Result is a normalized provider answer. Provider records which
// provider produced it.
type Result struct {
	Provider   string   `json:"provider"`
	TotalItems int      `json:"totalItems"`
	Volumes    []Volume `json:"items"`
}

// Empty reports whether the result carries no volumes.
func (r *Result) Empty() bool {
	return r == nil || len(r.Volumes) == 0
}

// ProviderHealth contains passive health information about a provider,
// derived from the outcome of real requests.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the time the health was last updated
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential request failures
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// ProviderConfig contains configuration for a book metadata provider.
type ProviderConfig struct {
	// Name is the provider identifier (e.g., "googlebooks")
	Name string

	// Type is the adapter type (googlebooks, isbndb, openlibrary)
	Type string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Timeout bounds a single request to the provider
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts
	MaxRetries int

	// RequestsPerSecond throttles outbound calls (0 disables throttling)
	RequestsPerSecond float64

	// UserAgent is sent on every outbound request
	UserAgent string

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Connection pool defaults used when ProviderConfig leaves them zero.
const (
	DefaultMaxIdleConns        = 20
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultUserAgent           = "bookproxy"
)
