// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// sanitizeLogValue removes control characters from strings before they reach
// the log stream, preventing forged or corrupted log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON marshals v and writes it with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writePayload(w, status, data)
}

// respondRaw writes an already-encoded JSON payload verbatim. Used by the
// proxy endpoints, which forward backend payloads without re-coercion.
func respondRaw(w http.ResponseWriter, status int, payload []byte) {
	writePayload(w, status, payload)
}

func writePayload(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes the uniform {"error": message} envelope. The internal
// cause, when present, is logged and never serialized.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.Error().
			Int("status", status).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, &models.ErrorResponse{Error: message})
}
