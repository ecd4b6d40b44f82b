// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"
)

// GarbageCollector matches the identity store's value-log maintenance loop.
type GarbageCollector interface {
	RunGC(ctx context.Context, interval time.Duration) error
}

// StoreGCService runs the identity store's garbage collection loop under
// supervision so a panic or error gets the standard restart treatment.
type StoreGCService struct {
	collector GarbageCollector
	interval  time.Duration
}

// NewStoreGCService creates the wrapper. Intervals <= 0 fall back to 10m.
func NewStoreGCService(collector GarbageCollector, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		collector: collector,
		interval:  interval,
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	return s.collector.RunGC(ctx, s.interval)
}

// String names the service in supervision logs.
func (s *StoreGCService) String() string {
	return "identity-store-gc"
}
