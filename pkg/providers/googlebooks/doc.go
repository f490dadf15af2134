// Package googlebooks implements the Google Books provider adapter.
//
// Searches call GET {base}/volumes with q, maxResults, orderBy and
// langRestrict. ISBN lookups reuse the same endpoint with the isbn:
// operator. The optional API key travels as the key query parameter and
// is redacted from logs.
//
// Google Books is the reference shape for the canonical Volume, so the
// transform is mostly a copy plus cleanup: subtitles are appended to the
// title, author and category lists are de-duplicated, and cover links are
// upgraded to https.
package googlebooks
