// Package archive persists serialized pipeline objects in a local BadgerDB
// store, keyed by scenario name. It lets finished runs be stored, listed,
// and restored without keeping them in memory.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/waterfutures/scadasim/pkg/serialize"
)

// Config holds archive configuration.
type Config struct {
	Path          string
	CacheCapacity int
	CacheTTL      time.Duration
}

// DefaultConfig returns default archive configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:          "./data",
		CacheCapacity: 32,
		CacheTTL:      10 * time.Minute,
	}
}

// Archive is a badger-backed store of serialized pipeline objects with an
// LRU cache of decoded entries.
type Archive struct {
	cfg   *Config
	db    *badger.DB
	cache *decodeCache
	mu    sync.RWMutex
}

// Open opens (or creates) an archive at the configured path.
func Open(cfg *Config) (*Archive, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	opts := badger.DefaultOptions(filepath.Join(cfg.Path, "badger"))
	opts.Logger = nil // Disable BadgerDB logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	return &Archive{
		cfg:   cfg,
		db:    db,
		cache: newDecodeCache(cfg.CacheCapacity, cfg.CacheTTL),
	}, nil
}

// Store serializes and persists an object under the given name. An empty
// name is replaced by a generated one; the final name is returned.
func (a *Archive) Store(ctx context.Context, name string, obj serialize.Serializable) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" {
		name = uuid.NewString()
	}

	data, err := serialize.Dump(obj)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %q: %w", name, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(name), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %q: %w", name, err)
	}

	a.cache.remove(name)
	return name, nil
}

// Fetch loads and decodes the object stored under name, consulting the
// decode cache first.
func (a *Archive) Fetch(ctx context.Context, name string) (serialize.Serializable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if obj, ok := a.cache.get(name); ok {
		return obj, nil
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	var data []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}

	obj, err := serialize.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", name, err)
	}

	a.cache.put(name, obj)
	return obj, nil
}

// List returns the names of all stored objects.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	var names []string
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	return names, nil
}

// Delete removes a stored object.
func (a *Archive) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}

	a.cache.remove(name)
	return nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
