// Package isbndb implements the ISBNdb provider adapter.
//
// ISBNdb requires an API key sent in the Authorization header. Searches
// call GET {base}/books/{query}; ISBN lookups call GET {base}/book/{isbn13}.
// A 404 from either endpoint is a definitive "no match".
package isbndb
