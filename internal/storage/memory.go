package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemorySize = 10000

// MemoryStore is a bounded in-process Store evicting the least recently used entry.
// It is used on its own for tests and ephemeral runs, and as the front tier of Layered.
type MemoryStore struct {
	cache *lru.Cache[string, Entry]
}

// NewMemoryStore creates a store holding at most size entries.
func NewMemoryStore(size int) (*MemoryStore, error) {
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

// Lookup returns a copy of the cached entry for key.
func (m *MemoryStore) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	e, ok := m.cache.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	e.Vector = cloneVector(e.Vector)
	return e, true, nil
}

// Put stores a copy of the entry.
func (m *MemoryStore) Put(ctx context.Context, entry Entry) error {
	entry.Vector = cloneVector(entry.Vector)
	m.cache.Add(entry.Key, entry)
	return nil
}

// Count returns the number of resident entries.
func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	return int64(m.cache.Len()), nil
}

// Path returns "" since nothing is persisted.
func (m *MemoryStore) Path() string {
	return ""
}

// Close drops all entries.
func (m *MemoryStore) Close() error {
	m.cache.Purge()
	return nil
}
