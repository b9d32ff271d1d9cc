package repository

// Option configures a TreapStore.
type Option func(*TreapStore)

// WithMaxEntries caps the leaderboard size. When full, a new playlist that
// outranks the lowest ranked one replaces it; otherwise it is not kept.
// Zero or negative means unbounded.
func WithMaxEntries(n int) Option {
	return func(s *TreapStore) {
		s.maxEntries = n
	}
}

// JobOption configures a JobStore.
type JobOption func(*JobStore)

// WithRetention sets how many finished jobs are kept before the oldest is
// evicted.
func WithRetention(n int) JobOption {
	return func(s *JobStore) {
		if n > 0 {
			s.retention = n
		}
	}
}
