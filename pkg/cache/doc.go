// Package cache implements the two-tier response cache.
//
// The hot tier (storage.HotStore) answers most reads. The cold tier
// (storage.ColdStore) keeps everything for its full TTL and refills the
// hot tier when a key has been evicted there:
//
//	Get: hot hit  -> return (if stale, briefly check cold for a newer copy)
//	     hot miss -> cold hit -> return and promote to hot in the background
//	     both miss -> ErrMiss
//
//	Put: write hot (TTL capped at HotMaxTTL) and cold concurrently
//
// A tier that errors counts as a miss for reads and is ignored for writes
// as long as the other tier succeeds. Entries carry a schema version; an
// entry written under a different version is read as a miss.
//
// Keys are built with SearchKey and ISBNKey so equivalent requests share an
// entry.
package cache
