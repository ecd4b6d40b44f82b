// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package backend

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// CircuitBreakerGateway wraps a Gateway with circuit breaker protection so a
// down backend fails fast instead of tying up request handlers in transport
// timeouts.
//
// DETERMINISM NOTE: the breaker uses real time (via sony/gobreaker) for its
// interval and timeout calculations. Tests should exercise the wrapped
// gateway directly, not the breaker's timing.
type CircuitBreakerGateway struct {
	gateway Gateway
	cb      *gobreaker.CircuitBreaker[json.RawMessage]
	name    string
}

// NewCircuitBreakerGateway wraps gateway with a circuit breaker.
//
// Breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window in closed state
//   - 30 second open period before probing recovery
//   - Opens at >= 60% failure rate with minimum 10 requests
//
// A backend 4xx (StatusError below 500) and a missing configuration do not
// count as breaker failures: the backend is reachable (or was never called),
// so tripping the circuit would hide a caller problem behind an outage error.
func NewCircuitBreakerGateway(gateway Gateway) *CircuitBreakerGateway {
	cbName := "recommendation-backend"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if errors.Is(err, ErrNotConfigured) {
				return true
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Status < 500 {
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerGateway{
		gateway: gateway,
		cb:      cb,
		name:    cbName,
	}
}

// Recommend implements Gateway with breaker protection.
func (g *CircuitBreakerGateway) Recommend(ctx context.Context, userID, k int) (json.RawMessage, error) {
	return g.execute(func() (json.RawMessage, error) {
		return g.gateway.Recommend(ctx, userID, k)
	})
}

// TopRated implements Gateway with breaker protection.
func (g *CircuitBreakerGateway) TopRated(ctx context.Context, userID int) (json.RawMessage, error) {
	return g.execute(func() (json.RawMessage, error) {
		return g.gateway.TopRated(ctx, userID)
	})
}

// execute runs one gateway call through the breaker, translating an open
// circuit into the same unreachable shape callers already handle.
func (g *CircuitBreakerGateway) execute(fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	result, err := g.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, &UnreachableError{Endpoint: g.Endpoint(), Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
	return result, nil
}

// Endpoint reports the wrapped gateway's backend location when it exposes
// one, for use in operator-facing messages.
func (g *CircuitBreakerGateway) Endpoint() string {
	if c, ok := g.gateway.(*Client); ok {
		return c.baseURL
	}
	return "the configured backend"
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
