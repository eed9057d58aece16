package catalog

import (
	"context"
	"sync"
)

// Index is an immutable catalog snapshot. It is safe for concurrent reads;
// callers must not mutate the returned slice.
type Index struct {
	songs []Song
}

// Songs returns the snapshot's songs in stable catalog order.
func (idx *Index) Songs() []Song {
	if idx == nil {
		return nil
	}
	return idx.songs
}

// Len reports the number of songs in the snapshot.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.songs)
}

// Cache holds the process-wide catalog snapshot. The snapshot is built on
// first use and only replaced through an explicit Invalidate; a changed
// database is never silently picked up mid-run.
type Cache struct {
	store *Store

	mu    sync.RWMutex
	index *Index
}

// NewCache wraps a store with snapshot caching.
func NewCache(store *Store) *Cache {
	return &Cache{store: store}
}

// Snapshot returns the cached index, loading it from the store on first use.
func (c *Cache) Snapshot(ctx context.Context) (*Index, error) {
	c.mu.RLock()
	index := c.index
	c.mu.RUnlock()
	if index != nil {
		return index, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index != nil {
		return c.index, nil
	}
	songs, err := c.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	c.index = &Index{songs: songs}
	return c.index, nil
}

// Invalidate drops the cached snapshot; the next Snapshot call reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.index = nil
	c.mu.Unlock()
}
