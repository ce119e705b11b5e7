package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerCache implements Service on an embedded on-disk store. Cached facts
// survive restarts, which matters when every miss costs an SEC request.
type BadgerCache struct {
	db     *badger.DB
	ticker *time.Ticker
	done   chan struct{}
}

// NewBadgerCache opens (or creates) the store at the configured path and
// starts the value-log GC loop.
func NewBadgerCache(opts ...BadgerOption) (*BadgerCache, error) {
	cfg := &BadgerConfig{
		GCInterval: 10 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("badger cache: path is required")
	}

	options := badger.DefaultOptions(cfg.Path)
	options.Logger = nil // badger's own logger is noisy; errors surface via our calls

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}

	bc := &BadgerCache{
		db:     db,
		ticker: time.NewTicker(cfg.GCInterval),
		done:   make(chan struct{}),
	}
	go bc.gcLoop()
	return bc, nil
}

func (bc *BadgerCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return bc.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (bc *BadgerCache) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := bc.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return out, nil
}

func (bc *BadgerCache) Delete(_ context.Context, keys ...string) error {
	return bc.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bc *BadgerCache) Exists(_ context.Context, key string) (bool, error) {
	err := bc.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (bc *BadgerCache) gcLoop() {
	for {
		select {
		case <-bc.done:
			return
		case <-bc.ticker.C:
			// ErrNoRewrite just means there was nothing to reclaim
			if err := bc.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				return
			}
		}
	}
}

// Close stops GC and closes the store.
func (bc *BadgerCache) Close() error {
	bc.ticker.Stop()
	close(bc.done)
	return bc.db.Close()
}
