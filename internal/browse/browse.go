// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package browse contains the pure aggregation and filter engine that turns
// a flat ranked recommendation list into the views a client renders.
//
// Both operations are stateless and allocation-fresh: they never mutate
// their input and every call recomputes from the authoritative list rather
// than patching a previous result.
package browse

import (
	"strings"

	"github.com/tomtom215/marquee/internal/models"
)

// FallbackGenre is the synthetic row for recommendations without genres.
const FallbackGenre = "Other"

// GenreRow pairs a genre with the ranked recommendations filed under it.
type GenreRow struct {
	Genre string                  `json:"genre"`
	Items []models.Recommendation `json:"items"`
}

// GroupByGenre partitions a ranked list into genre rows.
//
// Row order is genre first-seen order across the ranked input (not
// alphabetical, not frequency-based). Within a row, items keep their global
// rank order. A recommendation with an empty genre list is filed under the
// single synthetic "Other" row; one with N genres appears in all N rows.
// This fan-out is intentional: the total item count across rows can exceed
// the input length.
func GroupByGenre(recs []models.Recommendation) []GenreRow {
	if len(recs) == 0 {
		return nil
	}

	rowIndex := make(map[string]int, len(recs))
	rows := make([]GenreRow, 0, len(recs))

	for _, rec := range recs {
		genres := rec.Movie.Genres
		if len(genres) == 0 {
			genres = []string{FallbackGenre}
		}
		for _, genre := range genres {
			idx, seen := rowIndex[genre]
			if !seen {
				idx = len(rows)
				rowIndex[genre] = idx
				rows = append(rows, GenreRow{Genre: genre})
			}
			rows[idx].Items = append(rows[idx].Items, rec)
		}
	}

	return rows
}

// Filter returns the recommendations whose title or any genre contains the
// query, case-insensitively.
//
// An empty query is the identity operation and returns the input unchanged.
// The result preserves rank order and the operation is idempotent:
// Filter(Filter(recs, q), q) equals Filter(recs, q).
func Filter(recs []models.Recommendation, query string) []models.Recommendation {
	if query == "" {
		return recs
	}

	needle := strings.ToLower(query)
	matched := make([]models.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if matches(rec, needle) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// matches reports whether needle (already lowercased) occurs in the title or
// any genre.
func matches(rec models.Recommendation, needle string) bool {
	if strings.Contains(strings.ToLower(rec.Movie.Title), needle) {
		return true
	}
	for _, genre := range rec.Movie.Genres {
		if strings.Contains(strings.ToLower(genre), needle) {
			return true
		}
	}
	return false
}
