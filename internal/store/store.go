// Package store persists sender style profiles and learning examples in a bbolt file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/hal9000y/gmail-drafter/internal/style"
)

const (
	profileBucket = "profiles"
	exampleBucket = "examples"
)

// ErrNotFound is returned by Get when no profile exists for the key.
var ErrNotFound = errors.New("profile not found")

// Example is one original/edited pair submitted for learning.
type Example struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Original  string    `json:"original"`
	Edited    string    `json:"edited"`
	EditDelta int       `json:"edit_delta"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a bbolt backed profile store.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("os.MkdirAll failed: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt.Open failed: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range []string{profileBucket, exampleBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Update failed: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the profile stored under key, or ErrNotFound.
func (s *Store) Get(key string) (*style.Profile, error) {
	key = style.NormalizeKey(key)

	var p *style.Profile
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(profileBucket)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}

		p = &style.Profile{}
		return json.Unmarshal(data, p)
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Upsert applies fn to the current profile (nil when absent) and stores the
// result. Read and write happen in one transaction.
func (s *Store) Upsert(key string, fn func(existing *style.Profile) style.Profile) (style.Profile, error) {
	key = style.NormalizeKey(key)

	var out style.Profile
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(profileBucket))

		var existing *style.Profile
		if data := b.Get([]byte(key)); data != nil {
			existing = &style.Profile{}
			if err := json.Unmarshal(data, existing); err != nil {
				return fmt.Errorf("json.Unmarshal failed: %w", err)
			}
		}

		out = fn(existing)
		out.SenderKey = key
		out.UpdatedAt = s.now().UTC()

		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("json.Marshal failed: %w", err)
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return style.Profile{}, fmt.Errorf("db.Update failed: %w", err)
	}

	return out, nil
}

// LogExample records a learning example and returns it with ID and timestamp set.
func (s *Store) LogExample(ex Example) (Example, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Example{}, fmt.Errorf("uuid.NewV7 failed: %w", err)
	}
	ex.ID = id.String()
	ex.Sender = style.NormalizeKey(ex.Sender)
	ex.CreatedAt = s.now().UTC()

	data, err := json.Marshal(ex)
	if err != nil {
		return Example{}, fmt.Errorf("json.Marshal failed: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(exampleBucket)).Put([]byte(ex.ID), data)
	})
	if err != nil {
		return Example{}, fmt.Errorf("db.Update failed: %w", err)
	}

	return ex, nil
}

// Examples lists the examples logged for sender, oldest first.
func (s *Store) Examples(sender string) ([]Example, error) {
	sender = style.NormalizeKey(sender)

	var out []Example
	err := s.db.View(func(tx *bbolt.Tx) error {
		// v7 ids sort by creation time
		return tx.Bucket([]byte(exampleBucket)).ForEach(func(_, v []byte) error {
			var ex Example
			if err := json.Unmarshal(v, &ex); err != nil {
				return err
			}
			if ex.Sender == sender {
				out = append(out, ex)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("db.View failed: %w", err)
	}

	return out, nil
}
