package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"bookproxy/pkg/validate"
)

// Key prefixes. The version segment changes when key derivation changes.
const (
	searchKeyPrefix = "search:v1:"
	isbnKeyPrefix   = "isbn:v1:"
)

// SearchKey derives the cache key for a validated search. Queries that
// differ only in case or whitespace share a key.
func SearchKey(q *validate.SearchQuery) string {
	canonical := strings.Join([]string{
		strings.ToLower(strings.Join(strings.Fields(q.Query), " ")),
		strconv.Itoa(q.MaxResults),
		q.OrderBy,
		q.LangRestrict,
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return searchKeyPrefix + hex.EncodeToString(sum[:])
}

// ISBNKey derives the cache key for a validated ISBN. ISBN-10 and ISBN-13
// forms of the same book share a key.
func ISBNKey(isbn validate.ISBNKey) string {
	return isbnKeyPrefix + isbn.ISBN13()
}
