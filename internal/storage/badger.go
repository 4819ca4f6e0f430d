package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// record is the badgerhold row behind every key.
type record struct {
	Key       string `badgerhold:"key"`
	Value     []byte
	UpdatedAt time.Time
}

// Badger is the on-disk Backend.
type Badger struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	closed atomic.Bool
}

// OpenBadger opens (creating if needed) a badgerhold database in dir.
func OpenBadger(dir string, logger arbor.ILogger) (*Badger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	if logger != nil {
		logger.Debug().Str("path", dir).Msg("Badger database initialized")
	}
	return &Badger{store: store, logger: logger}, nil
}

// OpenBadgerInMemory opens a badgerhold database that lives only in memory.
func OpenBadgerInMemory() (*Badger, error) {
	options := badgerhold.DefaultOptions
	options.Dir = ""
	options.ValueDir = ""
	options.InMemory = true
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger database: %w", err)
	}
	return &Badger{store: store}, nil
}

func (b *Badger) Load(key string) ([]byte, error) {
	if b.closed.Load() {
		return nil, ErrUnavailable
	}
	var rec record
	if err := b.store.Get(key, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return rec.Value, nil
}

func (b *Badger) Save(key string, value []byte) error {
	if b.closed.Load() {
		return ErrUnavailable
	}
	rec := record{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := b.store.Upsert(key, &rec); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Delete(key string) error {
	if b.closed.Load() {
		return ErrUnavailable
	}
	if err := b.store.Delete(key, &record{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Keys(prefix string) ([]string, error) {
	if b.closed.Load() {
		return nil, ErrUnavailable
	}
	var recs []record
	if err := b.store.Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	var keys []string
	for _, r := range recs {
		if strings.HasPrefix(r.Key, prefix) {
			keys = append(keys, r.Key)
		}
	}
	return keys, nil
}

// Close closes the database. Later calls return ErrUnavailable.
func (b *Badger) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.store.Close()
}
