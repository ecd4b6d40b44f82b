// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads and validates the Marquee configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (BACKEND_URL, HTTP_PORT, IDENTITY_PATH, ...)
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for the Marquee server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Backend   BackendConfig   `koanf:"backend"`
	Identity  IdentityConfig  `koanf:"identity"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig configures the external recommendation backend.
//
// URL may legitimately be empty: the gateway then rejects every proxy call
// with a configuration error instead of silently defaulting. This mirrors
// the deployment contract where BACKEND_URL is the single required value.
type BackendConfig struct {
	// URL is the backend base address, e.g. http://localhost:8000.
	URL string `koanf:"url"`

	// Timeout bounds a single backend round trip at the transport level.
	// Marquee itself never retries; the caller owns recovery.
	Timeout time.Duration `koanf:"timeout"`

	// BreakerEnabled wraps the gateway in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// IdentityConfig configures where the signed-in viewer identity lives.
type IdentityConfig struct {
	// Store selects the identity store backend: "badger" or "memory".
	Store string `koanf:"store"`

	// Path is the BadgerDB directory (badger store only).
	Path string `koanf:"path"`

	// GCInterval is how often the Badger value log GC runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// RecommendConfig configures recommendation retrieval.
type RecommendConfig struct {
	// DefaultK is the page size requested when the caller does not name one.
	DefaultK int `koanf:"default_k"`
}

// SecurityConfig configures the HTTP edge.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Backend: BackendConfig{
			URL:            "", // Required at request time; absence is surfaced, never defaulted
			Timeout:        30 * time.Second,
			BreakerEnabled: true,
		},
		Identity: IdentityConfig{
			Store:      "badger",
			Path:       "/data/identity",
			GCInterval: 5 * time.Minute,
		},
		Recommend: RecommendConfig{
			DefaultK: 20,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks configuration invariants that cannot wait until a request.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}

	// An unset backend URL is allowed (surfaced per request), but a set one
	// must be a usable absolute http(s) URL.
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil {
			return fmt.Errorf("backend.url is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("backend.url must use http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("backend.url has no host: %q", c.Backend.URL)
		}
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}

	switch strings.ToLower(c.Identity.Store) {
	case "badger", "memory":
	default:
		return fmt.Errorf("identity.store must be \"badger\" or \"memory\", got %q", c.Identity.Store)
	}
	if strings.EqualFold(c.Identity.Store, "badger") && c.Identity.Path == "" {
		return fmt.Errorf("identity.path is required for the badger identity store")
	}

	if c.Recommend.DefaultK < 1 || c.Recommend.DefaultK > 100 {
		return fmt.Errorf("recommend.default_k must be in 1-100, got %d", c.Recommend.DefaultK)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	return nil
}
