// Package storage persists small JSON documents under string keys.
//
// Reads never fail: a missing key, a value that no longer decodes or an
// unavailable backend all yield the caller's fallback. Writes that fail are
// logged at debug level and dropped, so in-memory state stays the source of
// truth for the running process.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/seenimoa/researchdesk/internal/config"
)

// Persistent keys.
const (
	KeyWatchlist      = "er:watchlist"
	KeyCustomStocks   = "er:custom-stocks"
	KeyWorkingSet     = "er:working-set"
	KeyResearchSets   = "er:research-sets"
	KeyCompsOverrides = "er:comps-overrides"

	thesisPrefix = "er:thesis:"
)

// ThesisKey returns the key holding the thesis note for ticker.
func ThesisKey(ticker string) string {
	return thesisPrefix + ticker
}

// ThesisTicker is the inverse of ThesisKey.
func ThesisTicker(key string) (string, bool) {
	if !strings.HasPrefix(key, thesisPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, thesisPrefix), true
}

var (
	// ErrNotFound is returned by a Backend for an absent key.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnavailable is returned by a closed or disabled Backend.
	ErrUnavailable = errors.New("storage: backend unavailable")
	// ErrQuotaExceeded is returned when a write would exceed the backend quota.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Backend is a raw key/value store.
type Backend interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Store wraps a Backend with JSON encoding and error swallowing.
type Store struct {
	backend Backend
	logger  arbor.ILogger
}

// New returns a Store over backend. A nil backend gives a store where every
// read returns the fallback and every write is dropped.
func New(backend Backend, logger arbor.ILogger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Open creates the backend selected by cfg.Driver.
func Open(cfg config.StorageConfig, logger arbor.ILogger) (*Store, error) {
	switch cfg.Driver {
	case "memory":
		return New(NewMemory(0), logger), nil
	case "badger":
		b, err := OpenBadger(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return New(b, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Keys lists stored keys with the given prefix in lexical order. Errors
// yield an empty list.
func (s *Store) Keys(prefix string) []string {
	if s == nil || s.backend == nil {
		return nil
	}
	keys, err := s.backend.Keys(prefix)
	if err != nil {
		s.debug(err, prefix, "list keys failed")
		return nil
	}
	sort.Strings(keys)
	return keys
}

// Get decodes the value under key, returning fallback when the key is
// absent, the value does not decode or the store is unavailable.
func Get[T any](s *Store, key string, fallback T) T {
	if s == nil || s.backend == nil {
		return fallback
	}
	raw, err := s.backend.Load(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.debug(err, key, "load failed")
		}
		return fallback
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		s.debug(err, key, "decode failed, using fallback")
		return fallback
	}
	return out
}

// Set encodes value under key. Failures are logged and dropped.
func Set[T any](s *Store, key string, value T) {
	if s == nil || s.backend == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.debug(err, key, "encode failed")
		return
	}
	if err := s.backend.Save(key, raw); err != nil {
		s.debug(err, key, "save failed")
	}
}

// Remove deletes key. Failures are logged and dropped.
func Remove(s *Store, key string) {
	if s == nil || s.backend == nil {
		return
	}
	if err := s.backend.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
		s.debug(err, key, "delete failed")
	}
}

func (s *Store) debug(err error, key, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Debug().Err(err).Str("key", key).Msg("storage: " + msg)
}
