package cache

import (
	"context"
	"sync"
	"time"

	"github.com/chenyahui/gin-cache/persist"
)

// MemoryStore wraps persist.MemoryStore. The wrapped store can't be
// flushed, so Invalidate swaps in a fresh one.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store *persist.MemoryStore
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		store: persist.NewMemoryStore(ttl),
	}
}

func (m *MemoryStore) current() *persist.MemoryStore {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.store
}

func (m *MemoryStore) Set(key string, value any, expire time.Duration) error {
	return m.current().Set(key, value, expire)
}

func (m *MemoryStore) Get(key string, value any) error {
	return m.current().Get(key, value)
}

func (m *MemoryStore) Delete(key string) error {
	return m.current().Delete(key)
}

func (m *MemoryStore) Invalidate(context.Context) error {
	m.mu.Lock()
	m.store = persist.NewMemoryStore(m.ttl)
	m.mu.Unlock()

	return nil
}
