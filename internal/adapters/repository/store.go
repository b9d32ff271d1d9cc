// Package repository holds the in-memory playlist leaderboard and job store.
package repository

import (
	"context"
)

// Entry is a leaderboard row.
type Entry struct {
	Rank          int
	PlaylistID    string
	HealthScore   int
	HealthStatus  string
	OverallRating float64
	Personality   string
}

// Store ranks playlists by health score.
type Store interface {
	// Upsert records the latest analysis of a playlist, replacing any earlier one.
	Upsert(ctx context.Context, e Entry) error

	// Rank returns the current entry of a playlist, or ErrNotFound.
	Rank(ctx context.Context, playlistID string) (Entry, error)

	// TopN returns up to n entries ordered by health score desc, playlist id asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of ranked playlists.
	Count(ctx context.Context) int
}
