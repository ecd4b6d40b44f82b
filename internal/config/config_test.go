// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration invalid: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("default port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Backend.URL != "" {
		t.Errorf("backend URL must default to unset, got %q", cfg.Backend.URL)
	}
	if cfg.Recommend.DefaultK != 20 {
		t.Errorf("default k = %d, want 20", cfg.Recommend.DefaultK)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend:8000")
	t.Setenv("HTTP_PORT", "4100")
	t.Setenv("IDENTITY_STORE", "memory")
	t.Setenv("RECOMMEND_DEFAULT_K", "15")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.URL != "http://backend:8000" {
		t.Errorf("backend URL = %q", cfg.Backend.URL)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.Identity.Store != "memory" {
		t.Errorf("identity store = %q", cfg.Identity.Store)
	}
	if cfg.Recommend.DefaultK != 15 {
		t.Errorf("default k = %d, want 15", cfg.Recommend.DefaultK)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadIgnoresUnmappedEnvironment(t *testing.T) {
	t.Setenv("PATH_INFO", "should-not-leak")
	t.Setenv("BACKENDURL", "http://wrong")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "" {
		t.Errorf("unmapped variable leaked into backend URL: %q", cfg.Backend.URL)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"server:",
		"  port: 5005",
		"backend:",
		"  url: http://file-backend:8000",
		"security:",
		"  rate_limit_disabled: true",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 5005 {
		t.Errorf("port = %d, want 5005 from file", cfg.Server.Port)
	}
	if cfg.Backend.URL != "http://file-backend:8000" {
		t.Errorf("backend URL = %q", cfg.Backend.URL)
	}
	if !cfg.Security.RateLimitDisabled {
		t.Error("rate_limit_disabled not read from file")
	}
}

func TestEnvironmentBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 5005\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "6006")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 6006 {
		t.Errorf("port = %d, environment must win over file", cfg.Server.Port)
	}
}

func TestCORSOriginsSplitFromEnvironment(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"http://localhost:3000", "https://app.example.com"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("cors origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(c *Config) {}, wantErr: false},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "backend url without scheme", mutate: func(c *Config) { c.Backend.URL = "localhost:8000" }, wantErr: true},
		{name: "backend ftp scheme", mutate: func(c *Config) { c.Backend.URL = "ftp://host" }, wantErr: true},
		{name: "valid backend url", mutate: func(c *Config) { c.Backend.URL = "https://backend:8000" }, wantErr: false},
		{name: "unknown identity store", mutate: func(c *Config) { c.Identity.Store = "redis" }, wantErr: true},
		{name: "memory identity store", mutate: func(c *Config) { c.Identity.Store = "memory" }, wantErr: false},
		{name: "negative default k", mutate: func(c *Config) { c.Recommend.DefaultK = -1 }, wantErr: true},
		{name: "backend timeout zero", mutate: func(c *Config) { c.Backend.Timeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	if got := s.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "BACKEND_URL", want: "backend.url"},
		{in: "HTTP_PORT", want: "server.port"},
		{in: "IDENTITY_PATH", want: "identity.path"},
		{in: "RECOMMEND_DEFAULT_K", want: "recommend.default_k"},
		{in: "LOG_LEVEL", want: "logging.level"},
		{in: "HOME", want: ""},
		{in: "RANDOM_VAR", want: ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultGCInterval(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.Identity.GCInterval != 5*time.Minute {
		t.Errorf("gc interval = %v, want 5m", cfg.Identity.GCInterval)
	}
}
