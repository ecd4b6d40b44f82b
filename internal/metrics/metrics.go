// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package metrics provides Prometheus instrumentation for Marquee:
// API endpoint latency and throughput, backend gateway outcomes,
// circuit breaker state, and identity store activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Backend Gateway Metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_backend_requests_total",
			Help: "Total number of backend gateway calls",
		},
		[]string{"endpoint", "outcome"}, // outcome: success, rejected, unreachable, decode_error, not_configured
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_backend_request_duration_seconds",
			Help:    "Duration of backend gateway calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	// Identity Store Metrics
	IdentityLoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_identity_logins_total",
			Help: "Total number of successful viewer logins",
		},
	)

	IdentityLogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_identity_logouts_total",
			Help: "Total number of viewer logouts",
		},
	)

	// Viewer State Machine Metrics
	ViewerFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_viewer_fetches_total",
			Help: "Recommendation fetches issued by the viewer state machine",
		},
		[]string{"result"}, // result: ready, failed, stale
	)
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackendRequest records one backend gateway call outcome.
func RecordBackendRequest(endpoint, outcome string, duration time.Duration) {
	BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
