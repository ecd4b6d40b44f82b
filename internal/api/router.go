// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package api provides HTTP routing and request handlers using Chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Router assembles the HTTP surface from handlers and security config.
type Router struct {
	handlers *Handlers
	security *config.SecurityConfig
}

// NewRouter creates a Router for the given handlers.
func NewRouter(handlers *Handlers, security *config.SecurityConfig) *Router {
	return &Router{
		handlers: handlers,
		security: security,
	}
}

// Setup configures all HTTP routes and returns the root handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		if !rt.security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(rt.security.RateLimitReqs, rt.security.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", rt.handlers.HandleHealth)

		// Proxy endpoints mirror the backend's contract.
		r.Post("/recommend", rt.handlers.HandleRecommend)
		r.Get("/top-rated", rt.handlers.HandleTopRated)

		// Identity lifecycle.
		r.Post("/session", rt.handlers.HandleLogin)
		r.Get("/session", rt.handlers.HandleCurrentSession)
		r.Delete("/session", rt.handlers.HandleLogout)

		// Presentation views.
		r.Get("/browse", rt.handlers.HandleBrowse)
		r.Post("/browse/reload", rt.handlers.HandleReload)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
