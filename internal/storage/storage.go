// Package storage defines the persistent embedding cache: a content-addressed
// mapping from cache key to a previously computed embedding vector.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Entry is one cached embedding. Model records which embedding model produced the
// vector; it is metadata only and never part of the key.
type Entry struct {
	Key    string
	Vector []float32
	Model  string
}

// Store persists embeddings by content key. Entries are overwritten on re-insert and
// never deleted.
type Store interface {
	// Lookup returns the entry for key and whether it was present.
	Lookup(ctx context.Context, key string) (Entry, bool, error)
	// Put writes the entry, replacing any existing value for the same key.
	Put(ctx context.Context, entry Entry) error
	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
	// Path returns the backing file path, or "" for in-memory stores.
	Path() string
	Close() error
}

// Options configures Open.
type Options struct {
	Backend    string
	Path       string
	MemorySize int // when > 0, an LRU tier of this size fronts the disk backend
}

// Open opens (or creates) the store described by opts and keeps the handle open
// until Close. Parent directories of Path are created as needed.
func Open(opts Options) (Store, error) {
	var (
		disk Store
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendSQLite, "":
		disk, err = NewSQLiteStore(opts.Path)
	case BackendBolt, "bbolt":
		disk, err = NewBoltStore(opts.Path)
	case BackendMemory:
		size := opts.MemorySize
		if size <= 0 {
			size = defaultMemorySize
		}
		return NewMemoryStore(size)
	default:
		return nil, fmt.Errorf("%w: %s (supported: sqlite, bolt, memory)", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.MemorySize <= 0 {
		return disk, nil
	}
	front, err := NewMemoryStore(opts.MemorySize)
	if err != nil {
		_ = disk.Close()
		return nil, err
	}
	return NewLayered(front, disk), nil
}
