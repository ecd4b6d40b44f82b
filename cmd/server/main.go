// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Command server runs the Marquee recommendation gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/backend"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/identity"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/viewer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "marquee: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("identity_store", cfg.Identity.Store).
		Bool("backend_configured", cfg.Backend.URL != "").
		Msg("Starting Marquee")

	if cfg.Backend.URL == "" {
		logging.Warn().Msg("BACKEND_URL is not set; proxy endpoints will report a configuration error")
	}

	// Identity store.
	var store identity.Store
	var badgerStore *identity.BadgerStore
	switch cfg.Identity.Store {
	case "memory":
		store = identity.NewMemoryStore()
	default:
		badgerStore, err = identity.NewBadgerStore(cfg.Identity.Path)
		if err != nil {
			return fmt.Errorf("open identity store at %s: %w", cfg.Identity.Path, err)
		}
		defer func() {
			if cerr := badgerStore.Close(); cerr != nil {
				logging.Error().Err(cerr).Msg("Failed to close identity store")
			}
		}()
		store = badgerStore
	}

	// Backend gateway, optionally behind a circuit breaker.
	var gateway backend.Gateway = backend.NewClient(&cfg.Backend)
	if cfg.Backend.BreakerEnabled {
		gateway = backend.NewCircuitBreakerGateway(gateway)
	}

	recommender := recommend.NewClient(gateway, cfg.Recommend.DefaultK)
	session := viewer.NewSession()

	handlers := api.NewHandlers(gateway, recommender, store, session)
	router := api.NewRouter(handlers, &cfg.Security)

	server := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router.Setup(),
	}

	// Supervision tree: storage maintenance and the HTTP server restart
	// independently of each other.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if badgerStore != nil {
		tree.AddStorageService(services.NewStoreGCService(badgerStore, cfg.Identity.GCInterval))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Marquee is ready")

	<-ctx.Done()
	logging.Info().Msg("Shutdown signal received")

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("Marquee stopped")
	return nil
}
