// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// currentKey is the single durable entry holding the signed-in identity.
const currentKey = "identity:current"

// BadgerStore implements Store on BadgerDB so the identity survives process
// restarts.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB identity store at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil) // Badger's own logger is noisy; failures surface as errors

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open identity store at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreWithDB wraps an already-open BadgerDB handle.
func NewBadgerStoreWithDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Login implements Store.
func (s *BadgerStore) Login(_ context.Context, userID int) error {
	if userID <= 0 {
		return ErrInvalidIdentity
	}

	data, err := json.Marshal(record{UserID: userID, LoginAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(currentKey), data)
	})
	if err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}

	metrics.IdentityLoginsTotal.Inc()
	return nil
}

// Logout implements Store. Deleting an absent identity succeeds.
func (s *BadgerStore) Logout(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(currentKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}

	metrics.IdentityLogoutsTotal.Inc()
	return nil
}

// Current implements Store.
func (s *BadgerStore) Current(_ context.Context) (int, bool, error) {
	var rec record
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("read identity: %w", err)
	}
	if !found {
		return 0, false, nil
	}
	return rec.UserID, true, nil
}

// RunGC runs Badger's value log garbage collection until ctx is canceled.
// Intended to run as a supervised service; interval <= 0 selects 5 minutes.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// ErrNoRewrite just means there was nothing to collect.
			err := s.db.RunValueLogGC(0.5)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logging.Warn().Err(err).Msg("Identity store value log GC failed")
			}
		}
	}
}
