package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	embeddingsBucket = []byte("embeddings")
	modelsBucket     = []byte("models")
)

// BoltStore implements Store on a single bbolt file. Vectors live in one bucket as
// JSON arrays; the producing model name is kept in a parallel bucket under the same key.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// NewBoltStore opens or creates a bbolt database at path. Parent directories are created
// if they do not exist. Open fails after one second if another process holds the file lock.
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(embeddingsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(modelsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return &BoltStore{db: db, path: path}, nil
}

// Lookup returns the cached embedding for key.
func (s *BoltStore) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	var (
		value []byte
		model string
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		// bytes returned by Get are only valid inside the transaction
		if v := tx.Bucket(embeddingsBucket).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		if m := tx.Bucket(modelsBucket).Get([]byte(key)); m != nil {
			model = string(m)
		}
		return nil
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	if value == nil {
		return Entry{}, false, nil
	}
	vec, err := decodeVector(key, value)
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Key: key, Vector: vec, Model: model}, true, nil
}

// Put inserts or replaces the entry.
func (s *BoltStore) Put(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeVector(entry.Vector)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(embeddingsBucket).Put([]byte(entry.Key), data); err != nil {
			return err
		}
		return tx.Bucket(modelsBucket).Put([]byte(entry.Key), []byte(entry.Model))
	})
	if err != nil {
		return fmt.Errorf("store %s: %w", entry.Key, err)
	}
	return nil
}

// Count returns the number of cached embeddings.
func (s *BoltStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bolt.Tx) error {
		n = int64(tx.Bucket(embeddingsBucket).Stats().KeyN)
		return nil
	})
	return n, err
}

// Path returns the database file path.
func (s *BoltStore) Path() string {
	return s.path
}

// Close closes the database and releases the file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
