// Package analysis is the engine boundary: it turns fully resolved playlist
// data into analysis, battle and seed results. Every call is synchronous and
// pure, so it is safe to invoke concurrently for independent requests.
package analysis

import (
	"fmt"

	"github.com/okian/playlab/internal/domain/compat"
	"github.com/okian/playlab/internal/domain/dna"
	"github.com/okian/playlab/internal/domain/features"
	"github.com/okian/playlab/internal/domain/genre"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/personality"
	"github.com/okian/playlab/internal/domain/scoring"
	"github.com/okian/playlab/internal/domain/seeds"
)

const maxTopTracks = 5

// Result is the outcome of a single-playlist analysis.
type Result struct {
	PlaylistID        string             `json:"playlist_id,omitempty"`
	AudioDNA          model.AudioDNA     `json:"audio_dna"`
	Personality       personality.Label  `json:"personality"`
	GenreDistribution []model.GenreShare `json:"genre_distribution"`
	Subgenres         []string           `json:"subgenres"`
	GenreFallback     bool               `json:"genre_fallback,omitempty"`
	HealthScore       int                `json:"health_score"`
	HealthStatus      string             `json:"health_status"`
	OverallRating     float64            `json:"overall_rating"`
	RatingDescription string             `json:"rating_description"`
	TopTracks         []model.TrackRef   `json:"top_tracks"`
}

// AudioData holds the Audio DNA of both battle sides.
type AudioData struct {
	Playlist1 model.AudioDNA `json:"playlist1"`
	Playlist2 model.AudioDNA `json:"playlist2"`
}

// BattleResult is the outcome of comparing two playlists.
type BattleResult struct {
	CompatibilityScore int           `json:"compatibility_score"`
	Winner             compat.Winner `json:"winner"`
	Playlist1Score     int           `json:"playlist1_score"`
	Playlist2Score     int           `json:"playlist2_score"`
	SharedArtists      []string      `json:"shared_artists"`
	SharedGenres       []string      `json:"shared_genres"`
	SharedTracks       []string      `json:"shared_tracks"`
	AudioData          AudioData     `json:"audio_data"`
}

// Analyze scores one playlist. It fails with model.ErrDataInsufficient when
// the track count is not positive or no track carries a usable feature
// vector, and with model.ErrValidation when a track has no id.
func Analyze(in model.AnalyzeInput) (Result, error) {
	if in.TrackCount <= 0 {
		return Result{}, fmt.Errorf("analyze: track count %d: %w", in.TrackCount, model.ErrDataInsufficient)
	}
	if err := validateTracks(in.Tracks); err != nil {
		return Result{}, fmt.Errorf("analyze: %w", err)
	}

	vs, refs := features.FromTracks(in.Tracks)
	audio, err := dna.Aggregate(vs)
	if err != nil {
		return Result{}, fmt.Errorf("analyze: %w", err)
	}

	means := features.MeanVector(vs)
	dist := genre.Build(in.GenreTags, in.TrackCount, means)
	health := scoring.ScoreHealth(vs, len(dist.Shares), in.TrackCount)

	subgenres := dist.Subgenres
	if subgenres == nil {
		subgenres = []string{}
	}

	return Result{
		PlaylistID:        in.PlaylistID,
		AudioDNA:          audio,
		Personality:       personality.Classify(means),
		GenreDistribution: dist.Shares,
		Subgenres:         subgenres,
		GenreFallback:     dist.Fallback,
		HealthScore:       health.Score,
		HealthStatus:      health.Status,
		OverallRating:     health.Rating,
		RatingDescription: health.RatingDescription,
		TopTracks:         refs[:min(len(refs), maxTopTracks)],
	}, nil
}

// Battle compares two playlists. A side without usable vectors degrades to a
// zero compatibility and a zero score instead of failing; a side without any
// tracks fails with model.ErrDataInsufficient.
func Battle(in model.BattleInput) (BattleResult, error) {
	ids1, err := sideTrackIDs("playlist1", in.Playlist1)
	if err != nil {
		return BattleResult{}, err
	}
	ids2, err := sideTrackIDs("playlist2", in.Playlist2)
	if err != nil {
		return BattleResult{}, err
	}

	vs1, _ := features.FromTracks(in.Playlist1.Tracks)
	vs2, _ := features.FromTracks(in.Playlist2.Tracks)

	score1 := scoring.BattleScore(vs1)
	score2 := scoring.BattleScore(vs2)

	return BattleResult{
		CompatibilityScore: compat.Score(vs1, vs2),
		Winner:             compat.Decide(score1, score2),
		Playlist1Score:     score1,
		Playlist2Score:     score2,
		SharedArtists:      compat.Intersect(in.Playlist1.Artists, in.Playlist2.Artists),
		SharedGenres:       compat.Intersect(normalized(in.Playlist1.GenreTags), normalized(in.Playlist2.GenreTags)),
		SharedTracks:       compat.Intersect(ids1, ids2),
		AudioData: AudioData{
			Playlist1: audioDNA(vs1),
			Playlist2: audioDNA(vs2),
		},
	}, nil
}

// SelectSeeds builds the recommendation seed spec for a strategy.
func SelectSeeds(strategy string, sig seeds.Signal) (seeds.Spec, error) {
	spec, err := seeds.Select(strategy, sig)
	if err != nil {
		return seeds.Spec{}, fmt.Errorf("select seeds: %w", err)
	}
	return spec, nil
}

func validateTracks(tracks []model.Track) error {
	for i, t := range tracks {
		if t.ID == "" {
			return fmt.Errorf("track %d has no id: %w", i, model.ErrValidation)
		}
	}
	return nil
}

// sideTrackIDs returns the explicit track ids of a side, or the ids of its
// tracks when none were listed.
func sideTrackIDs(name string, side model.BattleSide) ([]string, error) {
	if err := validateTracks(side.Tracks); err != nil {
		return nil, fmt.Errorf("battle %s: %w", name, err)
	}
	ids := side.TrackIDs
	if len(ids) == 0 {
		ids = make([]string, 0, len(side.Tracks))
		for _, t := range side.Tracks {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("battle %s: no tracks: %w", name, model.ErrDataInsufficient)
	}
	return ids, nil
}

func normalized(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := genre.NormalizeTag(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func audioDNA(vs []model.FeatureVector) model.AudioDNA {
	if len(vs) == 0 {
		return model.AudioDNA{}
	}
	return dna.FromMeans(features.MeanVector(vs))
}
