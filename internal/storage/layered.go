package storage

import "context"

// Layered serves lookups from a fast front store and falls back to a durable back
// store, promoting hits. Writes go to both.
type Layered struct {
	front Store
	back  Store
}

// NewLayered combines front (usually a MemoryStore) with back (a disk store).
func NewLayered(front, back Store) *Layered {
	return &Layered{front: front, back: back}
}

// Lookup checks the front store first, then the back store.
func (l *Layered) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	if e, ok, err := l.front.Lookup(ctx, key); err != nil || ok {
		return e, ok, err
	}
	e, ok, err := l.back.Lookup(ctx, key)
	if err != nil || !ok {
		return e, ok, err
	}
	if err := l.front.Put(ctx, e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Put writes the back store first so the front never holds unpersisted entries.
func (l *Layered) Put(ctx context.Context, entry Entry) error {
	if err := l.back.Put(ctx, entry); err != nil {
		return err
	}
	return l.front.Put(ctx, entry)
}

// Count reports the durable entry count.
func (l *Layered) Count(ctx context.Context) (int64, error) {
	return l.back.Count(ctx)
}

// Path returns the back store's file path.
func (l *Layered) Path() string {
	return l.back.Path()
}

// Close closes both tiers, returning the first error.
func (l *Layered) Close() error {
	ferr := l.front.Close()
	berr := l.back.Close()
	if berr != nil {
		return berr
	}
	return ferr
}
