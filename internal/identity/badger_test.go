// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package identity

import (
	"context"
	"errors"
	"testing"
)

func newTestBadgerStore(t *testing.T) (*BadgerStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store, dir
}

func TestBadgerStoreLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestBadgerStore(t)

	if _, ok, err := store.Current(ctx); err != nil || ok {
		t.Fatalf("Current() on fresh store = ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Login(ctx, 42); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	userID, ok, err := store.Current(ctx)
	if err != nil || !ok || userID != 42 {
		t.Fatalf("Current() = (%d, %v, %v), want (42, true, nil)", userID, ok, err)
	}

	if err := store.Login(ctx, 7); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if userID, _, _ := store.Current(ctx); userID != 7 {
		t.Errorf("Current() after relogin = %d, want 7", userID)
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok, _ := store.Current(ctx); ok {
		t.Error("identity still held after logout")
	}
	if err := store.Logout(ctx); err != nil {
		t.Errorf("Logout() on empty store error = %v", err)
	}
}

func TestBadgerStoreRejectsInvalidIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestBadgerStore(t)

	if err := store.Login(ctx, 0); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("Login(0) error = %v, want ErrInvalidIdentity", err)
	}
	if err := store.Login(ctx, -5); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("Login(-5) error = %v, want ErrInvalidIdentity", err)
	}
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	if err := store.Login(ctx, 99); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	userID, ok, err := reopened.Current(ctx)
	if err != nil || !ok || userID != 99 {
		t.Errorf("Current() after reopen = (%d, %v, %v), want (99, true, nil)", userID, ok, err)
	}
}

func TestBadgerStoreGCStopsOnCancel(t *testing.T) {
	t.Parallel()

	store, _ := newTestBadgerStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.RunGC(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("RunGC() error = %v, want context.Canceled", err)
	}
}
