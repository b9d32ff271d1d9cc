package api

import "time"

const (
	defaultMaxTracks           = 10_000
	defaultMaxLeaderboardLimit = 100
	// bytesPerTrack bounds the encoded size of one track in a request body.
	bytesPerTrack = 2048
	// bodySlack covers the non-track part of a request body.
	bodySlack = 64 << 10
)

type serverConfig struct {
	maxTracks           int
	maxLeaderboardLimit int
	rateLimitRequests   int
	rateLimitWindow     time.Duration
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		maxTracks:           defaultMaxTracks,
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
		rateLimitWindow:     time.Second,
	}
}

// Option configures the Server.
type Option func(*serverConfig)

// WithMaxTracks caps the tracks accepted per playlist and, with it, the
// request body size.
func WithMaxTracks(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxTracks = n
		}
	}
}

// WithMaxLeaderboardLimit caps the limit parameter of leaderboard queries.
func WithMaxLeaderboardLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLeaderboardLimit = n
		}
	}
}

// WithRateLimit allows requests compute requests per window per client IP.
// Zero requests disables limiting.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(c *serverConfig) {
		if requests >= 0 {
			c.rateLimitRequests = requests
		}
		if window > 0 {
			c.rateLimitWindow = window
		}
	}
}
