// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package models defines the wire-level domain types shared between the
// backend gateway, the recommendation client, and the HTTP API.
//
// Field names follow the recommendation backend's JSON contract exactly
// (movie_id, item_id, poster_url, ...). All values are treated as immutable
// after decoding: they are created once per response and shared by read-only
// reference across the aggregation engine and the viewer state machine.
package models

// Movie is the catalog entry attached to a recommendation.
//
// MovieID is always present and positive. The metadata link fields are
// nullable in the backend payload and therefore pointers here.
type Movie struct {
	MovieID     int      `json:"movie_id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Tags        []string `json:"tags"`
	IMDBID      *int     `json:"imdb_id"`
	TMDBID      *int     `json:"tmdb_id"`
	IMDBURL     *string  `json:"imdb_url"`
	TMDBURL     *string  `json:"tmdb_url"`
	PosterURL   *string  `json:"poster_url"`
	BackdropURL *string  `json:"backdrop_url"`
	TrailerURL  *string  `json:"trailer_url"`
}

// Recommendation is one ranked entry of a recommendation response.
// ItemID always equals Movie.MovieID.
type Recommendation struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
	Movie  Movie   `json:"movie"`
}

// RecommendationsResponse is the backend's answer to a recommend call.
// Recommendations are ordered best-first; that rank order is semantically
// meaningful and preserved through every downstream transformation.
type RecommendationsResponse struct {
	UserID          int              `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	K               int              `json:"k"`
	Message         string           `json:"message"`
}

// TopRatedResponse is the backend's answer to a top-rated call.
type TopRatedResponse struct {
	UserID  int    `json:"user_id"`
	Movie   Movie  `json:"movie"`
	Message string `json:"message,omitempty"`
}

// RecommendRequest is the body of POST /api/recommend.
type RecommendRequest struct {
	UserID int `json:"user_id" validate:"required,gt=0"`
	K      int `json:"k" validate:"gte=0,lte=100"`
}

// LoginRequest is the body of POST /api/session.
type LoginRequest struct {
	UserID int `json:"user_id" validate:"required,gt=0"`
}

// SessionResponse reports the currently signed-in viewer.
type SessionResponse struct {
	UserID int `json:"user_id"`
}

// ErrorResponse is the uniform error envelope of every API endpoint.
// The error string is the only detail that reaches the end user; status
// codes and raw transport causes are logged server-side instead.
type ErrorResponse struct {
	Error string `json:"error"`
}
