// Package types contains types shared between the service and its adapters.
package types

import "time"

// Entry is one row of the playlist health leaderboard.
type Entry struct {
	Rank          int     `json:"rank"`
	PlaylistID    string  `json:"playlist_id"`
	HealthScore   int     `json:"health_score"`
	HealthStatus  string  `json:"health_status"`
	OverallRating float64 `json:"overall_rating"`
	Personality   string  `json:"personality,omitempty"`
}

// JobStatus is the lifecycle state of an async job.
type JobStatus string

// Job states.
const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Terminal reports whether s is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// Job is the read view of an async job. Err is set when Status is failed.
type Job struct {
	ID          string
	Kind        string
	Status      JobStatus
	Result      any
	Err         error
	SubmittedAt time.Time
	FinishedAt  time.Time
}
