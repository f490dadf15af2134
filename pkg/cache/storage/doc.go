// Package storage provides the two cache tier backends.
//
// HotStore is a small, fast key/value store with per-key TTL. MemoryStore
// implements it in process with LRU eviction; the rate limiter keeps its
// counters here too.
//
// ColdStore is a large blob store with string metadata. SQLiteStore
// implements it on either SQLite driver:
//
//	store, err := storage.NewSQLiteStore(storage.SQLiteStoreConfig{
//		Driver: storage.DriverModernc,
//		Path:   "data/cold-cache.db",
//	})
//
// Expired cold blobs stay readable until Prune removes them; the cache
// manager checks expiry from the blob metadata.
package storage
