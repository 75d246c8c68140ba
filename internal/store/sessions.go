package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	apperrors "github.com/gmsas95/nutritrack/internal/errors"
)

// ==================== Session Methods (BadgerDB) ====================

// SaveSession stores the owner of a session ID until ttl expires
func (s *Store) SaveSession(id, userID string, ttl time.Duration) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte("session:"+id), []byte(userID)).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// GetSession returns the user owning a live session
func (s *Store) GetSession(id string) (string, error) {
	var userID string
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("session:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			userID = string(v)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", apperrors.ErrSessionExpired
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return userID, nil
}

// DeleteSession revokes a session
func (s *Store) DeleteSession(id string) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte("session:" + id))
	})
}

// ==================== KV Methods (BadgerDB) ====================

// SetKV stores a key-value pair
func (s *Store) SetKV(key string, value []byte) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("kv:"+key), value)
	})
}

// GetKV retrieves a value by key; a missing key yields nil, nil
func (s *Store) GetKV(key string) ([]byte, error) {
	var val []byte
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("kv:" + key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return val, err
}

// SetTime stores a timestamp under key
func (s *Store) SetTime(key string, t time.Time) error {
	b, err := t.UTC().MarshalText()
	if err != nil {
		return err
	}
	return s.SetKV(key, b)
}

// GetTime reads a timestamp stored with SetTime; missing keys yield zero time
func (s *Store) GetTime(key string) (time.Time, error) {
	b, err := s.GetKV(key)
	if err != nil || b == nil {
		return time.Time{}, err
	}
	var t time.Time
	err = t.UnmarshalText(b)
	return t, err
}
