// Package loadgen drives a running playlab service with synthetic playlists
// and checks the leaderboard it observes.
package loadgen

import (
	"time"

	"github.com/okian/playlab/internal/domain/types"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL           string        // Base URL of the service
	Playlists         int           // Number of playlists to generate
	TracksPerPlaylist int           // Tracks per generated playlist
	Battles           int           // Number of battles between random pairs
	Async             bool          // Submit analyses as jobs instead of synchronous calls
	DuplicateRate     float64       // Share of job submissions repeated with the same key
	TopN              int           // Leaderboard entries to fetch for verification
	Workers           int           // Concurrent requests in flight
	Timeout           time.Duration // HTTP request timeout
	JobWait           time.Duration // How long to wait for async jobs to finish
	Seed              int64         // Seed of the playlist generator
	OutputFile        string        // Optional JSON dump of the generated playlists
	Verbose           bool          // Log every failed request
}

// Stats holds run statistics.
type Stats struct {
	PlaylistsGenerated int
	Analyzed           int
	AnalyzeFailed      int
	JobsSubmitted      int
	JobsDuplicate      int
	JobsFailed         int
	Battles            int
	BattlesFailed      int
	SeedRequests       int
	SeedUnavailable    int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// Entry is a leaderboard row as served by the API.
type Entry = types.Entry
