// Package openlibrary implements the Open Library provider adapter.
//
// Both searches and ISBN lookups go through GET {base}/search.json. Works
// are keyed by their /works/ id, cover ids become covers.openlibrary.org
// URLs, and MARC language codes are mapped to ISO 639-1.
package openlibrary
