package validate

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Search parameter bounds.
const (
	MaxQueryLength    = 500
	MinMaxResults     = 1
	MaxMaxResults     = 40
	DefaultMaxResults = 20
)

// Sort orders accepted by ParseSearch.
const (
	OrderRelevance = "relevance"
	OrderNewest    = "newest"
)

// SearchQuery is a validated free-text search request.
type SearchQuery struct {
	Query        string
	MaxResults   int
	OrderBy      string
	LangRestrict string

	// IncludeTranslations is false when a non-English language was
	// requested. Adapters send their language filter only in that case;
	// an English or absent code leaves results unfiltered.
	IncludeTranslations bool
}

var schemePrefixes = []string{"javascript:", "data:", "vbscript:"}

// ParseSearch validates the /search query parameters. It returns either a
// sanitized query or a *ValidationError listing every rejected parameter.
func ParseSearch(values url.Values) (*SearchQuery, error) {
	var errs []FieldError

	q := &SearchQuery{
		MaxResults:          DefaultMaxResults,
		OrderBy:             OrderRelevance,
		IncludeTranslations: true,
	}

	raw := strings.TrimSpace(values.Get("q"))
	switch {
	case raw == "":
		errs = append(errs, fieldErr("q", CodeRequired, "search term is required"))
	case utf8.RuneCountInString(raw) > MaxQueryLength:
		errs = append(errs, fieldErr("q", CodeTooLong, "search term must be at most %d characters", MaxQueryLength))
	default:
		q.Query = Sanitize(raw)
		if q.Query == "" {
			errs = append(errs, fieldErr("q", CodeInvalidValue, "search term is empty after removing unsafe characters"))
		}
	}

	if v := strings.TrimSpace(values.Get("maxResults")); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fieldErr("maxResults", CodeInvalidValue, "maxResults must be an integer"))
		case n < MinMaxResults || n > MaxMaxResults:
			errs = append(errs, fieldErr("maxResults", CodeOutOfRange, "maxResults must be between %d and %d", MinMaxResults, MaxMaxResults))
		default:
			q.MaxResults = n
		}
	}

	if v := strings.TrimSpace(values.Get("orderBy")); v != "" {
		switch order := strings.ToLower(v); order {
		case OrderRelevance, OrderNewest:
			q.OrderBy = order
		default:
			errs = append(errs, fieldErr("orderBy", CodeInvalidValue, "orderBy must be %q or %q", OrderRelevance, OrderNewest))
		}
	}

	if v := strings.TrimSpace(values.Get("langRestrict")); v != "" {
		if !isLanguageCode(v) {
			errs = append(errs, fieldErr("langRestrict", CodeInvalidFormat, "langRestrict must be a 2 or 3 letter language code"))
		} else {
			q.LangRestrict = strings.ToLower(v)
			q.IncludeTranslations = q.LangRestrict == "en" || q.LangRestrict == "eng"
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return q, nil
}

// Sanitize strips markup and quote characters, control characters and
// script scheme prefixes from s, then trims surrounding space. Prefix
// removal repeats until stable so nested prefixes cannot survive.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '`':
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	for {
		before := s
		for _, prefix := range schemePrefixes {
			s = removeFold(s, prefix)
		}
		if s == before {
			break
		}
	}

	return strings.TrimSpace(s)
}

// removeFold removes every case-insensitive occurrence of the ASCII token sub.
func removeFold(s, sub string) string {
	lower := asciiLower(s)
	if !strings.Contains(lower, sub) {
		return s
	}

	var sb strings.Builder
	for {
		i := strings.Index(lower, sub)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		s = s[i+len(sub):]
		lower = lower[i+len(sub):]
	}
}

func isLanguageCode(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// asciiLower lowercases A-Z only, so byte offsets match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
