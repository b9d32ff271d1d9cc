package model

import "time"

// AnalyzeInput is a fully resolved single-playlist analysis request.
type AnalyzeInput struct {
	PlaylistID string   `json:"playlist_id,omitempty"`
	Tracks     []Track  `json:"tracks" validate:"dive"`
	GenreTags  []string `json:"genre_tags"`
	TrackCount int      `json:"track_count"`
}

// BattleSide is one playlist of a battle. Features travel on Tracks; TrackIDs
// and Artists are used only for the shared-content diffs.
type BattleSide struct {
	PlaylistID string   `json:"playlist_id,omitempty"`
	Tracks     []Track  `json:"tracks" validate:"dive"`
	GenreTags  []string `json:"genre_tags"`
	TrackIDs   []string `json:"track_ids"`
	Artists    []string `json:"artists"`
}

// BattleInput pairs the two sides of a battle.
type BattleInput struct {
	Playlist1 BattleSide `json:"playlist1"`
	Playlist2 BattleSide `json:"playlist2"`
}

// JobKind selects the engine call a job runs.
type JobKind string

// Job kinds.
const (
	JobAnalyze JobKind = "analyze"
	JobBattle  JobKind = "battle"
)

// Job is the unit of work flowing through the async queue.
type Job struct {
	ID          string        // server-assigned id
	Key         string        // client idempotency key
	Kind        JobKind       // which engine call to run
	Analyze     *AnalyzeInput // set when Kind == JobAnalyze
	Battle      *BattleInput  // set when Kind == JobBattle
	SubmittedAt time.Time
}
