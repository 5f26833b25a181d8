// Package prefs provides durable key-value storage for local app state,
// backed by BadgerDB. It is the process-local analog of a mobile platform's
// preferences store: small JSON blobs and counters under fixed keys.
package prefs

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Well-known storage keys.
const (
	KeyMoodEntries         = "manual_mood_entries"
	KeyLocalSessionBalance = "local_session_balance"
	KeyPurchaseHistory     = "mock_purchase_history"
	KeySeenOnboarding      = "has_seen_onboarding"
	KeyAcceptedDisclaimer  = "has_accepted_disclaimer"
	KeyAuthToken           = "auth_token"
	KeyAuthID              = "auth_user_id"
)

// Config holds parameters for opening a Store.
type Config struct {
	// Path is the directory for the database files. Ignored when InMemory.
	Path string
	// InMemory enables a non-persistent store, used by tests.
	InMemory bool
}

// Store is a durable key-value store.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the store at cfg.Path.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("prefs: storage path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("prefs: open %s: %w", cfg.Path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("prefs: close: %w", err)
	}
	return nil
}

// SetJSON stores v as a JSON blob under key.
func (s *Store) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("prefs: encode %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("prefs: set %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the JSON blob under key into out. found is false when the
// key has never been written.
func (s *Store) GetJSON(key string, out any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			found = true
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("prefs: get %s: %w", key, err)
	}
	return found, nil
}

// SetInt stores an integer counter under key.
func (s *Store) SetInt(key string, v int64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	})
	if err != nil {
		return fmt.Errorf("prefs: set %s: %w", key, err)
	}
	return nil
}

// GetInt reads the integer under key; missing keys read as zero.
func (s *Store) GetInt(key string) (int64, error) {
	var v int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("value under %s is %d bytes, want 8", key, len(val))
			}
			v = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("prefs: get %s: %w", key, err)
	}
	return v, nil
}

// SetBool stores a flag under key.
func (s *Store) SetBool(key string, v bool) error {
	var n int64
	if v {
		n = 1
	}
	return s.SetInt(key, n)
}

// GetBool reads the flag under key; missing keys read as false.
func (s *Store) GetBool(key string) (bool, error) {
	n, err := s.GetInt(key)
	return n != 0, err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("prefs: delete %s: %w", key, err)
	}
	return nil
}
