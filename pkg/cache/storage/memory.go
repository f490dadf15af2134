package storage

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStoreConfig configures the in-memory hot tier.
type MemoryStoreConfig struct {
	// MaxEntries is the maximum number of keys. The least recently used key
	// is evicted when a new key would exceed it.
	// Default: 10,000
	MaxEntries int

	// CleanupInterval is how often expired keys are swept.
	// Default: 1 minute
	CleanupInterval time.Duration

	// OnEvict, when set, is called with the number of keys removed by
	// capacity eviction or expiry sweeps. It runs with the store lock held
	// and must not call back into the store.
	OnEvict func(n int)
}

type memoryItem struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryStore implements HotStore with a TTL map and LRU eviction.
//
// MemoryStore is thread-safe. Get updates recency, so it takes the write lock.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List // front = most recently used

	maxEntries int
	onEvict    func(int)
	now        func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	closed    bool
}

// NewMemoryStore creates a memory store and starts its cleanup goroutine.
func NewMemoryStore(cfg MemoryStoreConfig) *MemoryStore {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	m := &MemoryStore{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		maxEntries: cfg.MaxEntries,
		onEvict:    cfg.OnEvict,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	go m.cleanupLoop(cfg.CleanupInterval)

	return m
}

// Get returns a copy of the value stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, ErrClosed
	}

	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}

	item := el.Value.(*memoryItem)
	if m.expiredLocked(item) {
		m.removeLocked(el)
		return nil, false, nil
	}

	m.lru.MoveToFront(el)
	return append([]byte(nil), item.value...), true, nil
}

// Put stores a copy of value under key.
func (m *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}
	value = append([]byte(nil), value...)

	if el, ok := m.items[key]; ok {
		item := el.Value.(*memoryItem)
		item.value = value
		item.expiresAt = expiresAt
		m.lru.MoveToFront(el)
		return nil
	}

	evicted := 0
	for m.lru.Len() >= m.maxEntries {
		m.removeLocked(m.lru.Back())
		evicted++
	}
	if evicted > 0 && m.onEvict != nil {
		m.onEvict(evicted)
	}

	m.items[key] = m.lru.PushFront(&memoryItem{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.items[key]; ok {
		m.removeLocked(el)
	}
	return nil
}

// Ping returns ErrClosed after Close.
func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Len returns the number of stored keys, including expired keys not yet swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Cleanup removes every expired key and returns how many were removed.
func (m *MemoryStore) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		if m.expiredLocked(el.Value.(*memoryItem)) {
			m.removeLocked(el)
			removed++
		}
		el = prev
	}

	if removed > 0 && m.onEvict != nil {
		m.onEvict(removed)
	}
	return removed
}

// Close stops the cleanup goroutine and drops all keys.
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		m.mu.Lock()
		m.closed = true
		m.items = make(map[string]*list.Element)
		m.lru.Init()
		m.mu.Unlock()
	})
	return nil
}

func (m *MemoryStore) expiredLocked(item *memoryItem) bool {
	return !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt)
}

func (m *MemoryStore) removeLocked(el *list.Element) {
	item := m.lru.Remove(el).(*memoryItem)
	delete(m.items, item.key)
}

func (m *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.done:
			return
		}
	}
}
