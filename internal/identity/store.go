// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package identity holds the single signed-in viewer identity.
//
// The identity is one positive integer, the user id the recommendation
// backend scores against. No server round trip validates it beyond the
// positivity check: the backend is trusted to treat any previously-unseen
// positive integer as a cold-start user. At most one identity is held at a
// time; there is no multi-account model.
//
// Two Store implementations exist: BadgerStore persists the identity across
// restarts, MemoryStore backs tests and ephemeral deployments.
package identity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidIdentity rejects non-positive user ids at login.
var ErrInvalidIdentity = errors.New("user id must be a positive integer")

// Store is the viewer identity contract.
//
// Login and Logout write durable state; Current never fails on absence
// (absence simply means signed out).
type Store interface {
	// Login records userID as the signed-in viewer.
	// Fails with ErrInvalidIdentity unless userID > 0.
	Login(ctx context.Context, userID int) error

	// Logout clears any signed-in viewer. Clearing an absent identity is
	// not an error.
	Logout(ctx context.Context) error

	// Current returns the signed-in viewer's id. ok is false when no
	// identity is held.
	Current(ctx context.Context) (userID int, ok bool, err error)
}

// record is the serialized identity entry.
type record struct {
	UserID  int       `json:"user_id"`
	LoginAt time.Time `json:"login_at"`
}

// MemoryStore is an in-memory Store for tests and ephemeral use.
type MemoryStore struct {
	mu     sync.RWMutex
	userID int
	held   bool
}

// NewMemoryStore creates an empty in-memory identity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Login implements Store.
func (s *MemoryStore) Login(_ context.Context, userID int) error {
	if userID <= 0 {
		return ErrInvalidIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.held = true
	return nil
}

// Logout implements Store.
func (s *MemoryStore) Logout(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = 0
	s.held = false
	return nil
}

// Current implements Store.
func (s *MemoryStore) Current(_ context.Context) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.held, nil
}
