package loadgen

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/playlab/internal/domain/model"
)

// profile is a playlist archetype: the centre of each feature and how far
// tracks stray from it.
type profile struct {
	name   string
	centre model.FeatureVector
	spread float64
	genres []string
}

var profiles = []profile{
	{"party", model.FeatureVector{Energy: 0.8, Danceability: 0.8, Valence: 0.7, Acousticness: 0.1, Instrumentalness: 0.05, Tempo: 124}, 0.1, []string{"pop", "dance pop", "electro house", "edm"}},
	{"chill", model.FeatureVector{Energy: 0.3, Danceability: 0.5, Valence: 0.4, Acousticness: 0.7, Instrumentalness: 0.2, Tempo: 90}, 0.15, []string{"acoustic", "indie folk", "lo-fi", "chillhop"}},
	{"focus", model.FeatureVector{Energy: 0.4, Danceability: 0.3, Valence: 0.3, Acousticness: 0.5, Instrumentalness: 0.8, Tempo: 100}, 0.1, []string{"ambient", "neo-classical", "post-rock"}},
	{"rock", model.FeatureVector{Energy: 0.75, Danceability: 0.4, Valence: 0.5, Acousticness: 0.15, Instrumentalness: 0.1, Tempo: 135}, 0.12, []string{"rock", "indie rock", "alternative rock", "punk"}},
	{"mixed", model.FeatureVector{Energy: 0.5, Danceability: 0.5, Valence: 0.5, Acousticness: 0.4, Instrumentalness: 0.2, Tempo: 115}, 0.35, []string{"pop", "rock", "jazz", "hip hop", "soul"}},
}

const (
	artistPool     = 40
	missingFeature = 0.03 // share of tracks the catalog returns without features
	tempoSpread    = 40.0
)

// Generator builds reproducible synthetic playlists.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // synthetic data
}

// Playlists generates n playlists of tracks tracks each.
func (g *Generator) Playlists(n, tracks int) []model.AnalyzeInput {
	out := make([]model.AnalyzeInput, n)
	for i := range out {
		out[i] = g.playlist(tracks)
	}
	return out
}

func (g *Generator) playlist(tracks int) model.AnalyzeInput {
	p := profiles[g.rng.Intn(len(profiles))]
	id := g.id("pl")

	in := model.AnalyzeInput{
		PlaylistID: id,
		Tracks:     make([]model.Track, tracks),
		TrackCount: tracks,
	}
	for i := range in.Tracks {
		artist := fmt.Sprintf("artist-%02d", g.rng.Intn(artistPool))
		in.Tracks[i] = model.Track{
			ID:            g.id("tr"),
			Name:          fmt.Sprintf("%s track %d", p.name, i+1),
			PrimaryArtist: artist,
			ArtistIDs:     []string{artist},
			Artists:       []string{artist},
			Popularity:    g.rng.Intn(101),
			DurationMs:    120_000 + g.rng.Intn(360_000),
		}
		if g.rng.Float64() >= missingFeature {
			in.Tracks[i].Features = g.features(p)
		}
	}
	for _, genre := range p.genres {
		if g.rng.Float64() < 0.7 {
			in.GenreTags = append(in.GenreTags, genre)
		}
	}
	return in
}

func (g *Generator) features(p profile) *model.RawFeatures {
	unit := func(c float64) *float64 {
		v := c + (g.rng.Float64()*2-1)*p.spread
		v = min(1, max(0, v))
		return &v
	}
	tempo := p.centre.Tempo + (g.rng.Float64()*2-1)*tempoSpread
	return &model.RawFeatures{
		Energy:           unit(p.centre.Energy),
		Danceability:     unit(p.centre.Danceability),
		Valence:          unit(p.centre.Valence),
		Acousticness:     unit(p.centre.Acousticness),
		Instrumentalness: unit(p.centre.Instrumentalness),
		Tempo:            &tempo,
	}
}

// id derives a uuid from the generator's stream so runs with one seed
// produce identical ids.
func (g *Generator) id(prefix string) string {
	u, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, g.rng.Int63())
	}
	return prefix + "-" + u.String()
}

// Battle returns the battle input for two generated playlists.
func Battle(a, b model.AnalyzeInput) model.BattleInput {
	return model.BattleInput{Playlist1: side(a), Playlist2: side(b)}
}

func side(in model.AnalyzeInput) model.BattleSide {
	s := model.BattleSide{
		PlaylistID: in.PlaylistID,
		Tracks:     in.Tracks,
		GenreTags:  in.GenreTags,
	}
	for _, t := range in.Tracks {
		s.TrackIDs = append(s.TrackIDs, t.ID)
		s.Artists = append(s.Artists, t.Artists...)
	}
	return s
}
