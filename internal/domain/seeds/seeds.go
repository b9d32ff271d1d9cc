// Package seeds maps a recommendation strategy and the listening signal a
// caller has to the seed parameters of a catalog recommendation lookup.
package seeds

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/okian/playlab/internal/domain/features"
	"github.com/okian/playlab/internal/domain/model"
)

// Strategy names a seed-construction policy.
type Strategy string

// Supported strategies.
const (
	BestNext              Strategy = "best_next"
	MoodSafe              Strategy = "mood_safe"
	RareMatch             Strategy = "rare_match"
	ReturnFamiliar        Strategy = "return_familiar"
	ShortSession          Strategy = "short_session"
	EnergyAdjust          Strategy = "energy_adjust"
	ProfessionalDiscovery Strategy = "professional_discovery"
	TasteExpansion        Strategy = "taste_expansion"
	DeepCuts              Strategy = "deep_cuts"
	ContinueSession       Strategy = "continue_session"
	FromLibrary           Strategy = "from_library"
)

// Catalog limits and strategy constants.
const (
	maxSeeds            = 5
	moodBand            = 0.2
	energyShift         = 0.3
	energyBand          = 0.1
	highEnergy          = 0.7
	rarePopularity      = 30
	deepCutPopularity   = 30
	libraryPopularity   = 50
	shortSessionMinMs   = 300_000
	shortSessionMaxMs   = 600_000
	expansionTrackSeeds = 3
	expansionGenreSeeds = 2
)

// genericGenres is the documented fallback for strategies that accept any
// seed when the caller supplied no signal at all.
var genericGenres = []string{"pop", "indie", "rock"}

// Artist is a top artist with its catalog genre tags.
type Artist struct {
	ID     string   `json:"id"`
	Genres []string `json:"genres,omitempty"`
}

// TopTracks holds top track ids per time window.
type TopTracks struct {
	Short  []string `json:"short_term,omitempty"`
	Medium []string `json:"medium_term,omitempty"`
	Long   []string `json:"long_term,omitempty"`
}

// TopArtists holds top artists per time window.
type TopArtists struct {
	Short  []Artist `json:"short_term,omitempty"`
	Medium []Artist `json:"medium_term,omitempty"`
	Long   []Artist `json:"long_term,omitempty"`
}

// Signal bundles whatever listening data the caller could resolve.
type Signal struct {
	SeedTrackIDs   []string      `json:"seed_track_ids,omitempty"`
	PlaylistTracks []model.Track `json:"playlist_tracks,omitempty"`
	RecentlyPlayed []string      `json:"recently_played,omitempty"` // most recent first
	SavedTracks    []string      `json:"saved_tracks,omitempty"`
	TopTracks      TopTracks     `json:"top_tracks"`
	TopArtists     TopArtists    `json:"top_artists"`
}

// TargetRanges constrain the catalog lookup. Nil fields are not sent.
type TargetRanges struct {
	TargetEnergy     *float64 `json:"target_energy,omitempty"`
	MinEnergy        *float64 `json:"min_energy,omitempty"`
	MaxEnergy        *float64 `json:"max_energy,omitempty"`
	TargetPopularity *int     `json:"target_popularity,omitempty"`
}

// Spec is the seed specification handed to the catalog collaborator.
type Spec struct {
	Strategy    Strategy      `json:"strategy"`
	SeedTracks  []string      `json:"seed_tracks,omitempty"`
	SeedArtists []string      `json:"seed_artists,omitempty"`
	SeedGenres  []string      `json:"seed_genres,omitempty"`
	Targets     *TargetRanges `json:"target_ranges,omitempty"`
	PostFilter  *PostFilter   `json:"post_filter,omitempty"`
	// Generic is true when the documented [pop, indie, rock] fallback was used.
	Generic bool `json:"generic,omitempty"`
}

// rule is one row of the strategy table.
type rule struct {
	// build returns the seeds or an UnavailableError naming the signal.
	build func(s Strategy, sig Signal) (Spec, error)
	// filter, when set, is attached to every spec the strategy produces.
	filter func() *PostFilter
	// generic allows the [pop, indie, rock] fallback when the strategy's own
	// signal and the explicit seed ids are both absent.
	generic bool
}

var table = map[Strategy]rule{
	BestNext:     {build: buildTrackSeeds, generic: true},
	MoodSafe:     {build: buildMoodSafe},
	RareMatch:    {build: buildRareMatch, filter: func() *PostFilter { return popularityBelow(rarePopularity) }, generic: true},
	ShortSession: {build: buildTrackSeeds, filter: func() *PostFilter { return durationBetween(shortSessionMinMs, shortSessionMaxMs) }, generic: true},

	ReturnFamiliar:        {build: buildReturnFamiliar},
	EnergyAdjust:          {build: buildEnergyAdjust},
	ProfessionalDiscovery: {build: buildProfessionalDiscovery},
	TasteExpansion:        {build: buildTasteExpansion},
	DeepCuts:              {build: buildDeepCuts, filter: func() *PostFilter { return popularityBelow(libraryPopularity) }},
	ContinueSession:       {build: buildContinueSession},
	FromLibrary:           {build: buildFromLibrary, filter: func() *PostFilter { return popularityBelow(libraryPopularity) }},
}

// Strategies lists the supported strategy ids in a stable order.
func Strategies() []Strategy {
	return []Strategy{
		BestNext, MoodSafe, RareMatch, ReturnFamiliar, ShortSession, EnergyAdjust,
		ProfessionalDiscovery, TasteExpansion, DeepCuts, ContinueSession, FromLibrary,
	}
}

// Select builds the seed spec for strategy from sig.
func Select(strategy string, sig Signal) (Spec, error) {
	s := Strategy(strings.TrimSpace(strategy))
	r, ok := table[s]
	if !ok {
		return Spec{}, fmt.Errorf("seeds: unknown strategy %q: %w", strategy, model.ErrValidation)
	}

	spec, err := r.build(s, sig)
	if err != nil {
		if !r.generic || !errors.Is(err, ErrSeedUnavailable) {
			return Spec{}, err
		}
		spec = Spec{SeedGenres: append([]string(nil), genericGenres...), Generic: true}
	}

	spec.Strategy = s
	if r.filter != nil {
		spec.PostFilter = r.filter()
	}
	return limit(spec), nil
}

// limit enforces the catalog cap of five seeds in total, keeping tracks first,
// then artists, then genres.
func limit(spec Spec) Spec {
	room := maxSeeds
	spec.SeedTracks, room = take(spec.SeedTracks, room)
	spec.SeedArtists, room = take(spec.SeedArtists, room)
	spec.SeedGenres, _ = take(spec.SeedGenres, room)
	return spec
}

func take(ids []string, room int) ([]string, int) {
	if len(ids) > room {
		ids = ids[:room]
	}
	if len(ids) == 0 {
		return nil, room
	}
	return ids, room - len(ids)
}

// distinct merges lists in order, dropping blanks and repeats, up to n ids.
func distinct(n int, lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range lists {
		for _, id := range l {
			if len(out) == n {
				return out
			}
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// trackSeeds prefers explicit seeds, then the first playlist tracks.
func trackSeeds(sig Signal) []string {
	if ids := distinct(maxSeeds, sig.SeedTrackIDs); len(ids) > 0 {
		return ids
	}
	ids := make([]string, 0, len(sig.PlaylistTracks))
	for _, t := range sig.PlaylistTracks {
		ids = append(ids, t.ID)
	}
	return distinct(maxSeeds, ids)
}

// meanEnergy averages energy over the playlist tracks that carry features.
func meanEnergy(sig Signal) (float64, bool) {
	vs, _ := features.FromTracks(sig.PlaylistTracks)
	if len(vs) == 0 {
		return 0, false
	}
	return features.Mean(vs, model.Energy), true
}

// genreSeed converts a display tag to the catalog's seed genre form.
func genreSeed(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), "-")
}

func artistGenres(n int, artists ...[]Artist) []string {
	var tags []string
	for _, list := range artists {
		for _, a := range list {
			for _, g := range a.Genres {
				tags = append(tags, genreSeed(g))
			}
		}
	}
	return distinct(n, tags)
}

func unit(v float64) *float64 {
	v = math.Max(0, math.Min(1, v))
	return &v
}

func buildTrackSeeds(s Strategy, sig Signal) (Spec, error) {
	ids := trackSeeds(sig)
	if len(ids) == 0 {
		return Spec{}, unavailable(s, "playlist tracks or seed track ids")
	}
	return Spec{SeedTracks: ids}, nil
}

func buildMoodSafe(s Strategy, sig Signal) (Spec, error) {
	spec, err := buildTrackSeeds(s, sig)
	if err != nil {
		return Spec{}, err
	}
	mean, ok := meanEnergy(sig)
	if !ok {
		return Spec{}, unavailable(s, "audio features for playlist tracks")
	}
	spec.Targets = &TargetRanges{
		TargetEnergy: unit(mean),
		MinEnergy:    unit(mean - moodBand),
		MaxEnergy:    unit(mean + moodBand),
	}
	return spec, nil
}

func buildRareMatch(s Strategy, sig Signal) (Spec, error) {
	if ids := trackSeeds(sig); len(ids) > 0 {
		return Spec{SeedTracks: ids}, nil
	}
	genres := artistGenres(maxSeeds, sig.TopArtists.Short, sig.TopArtists.Medium, sig.TopArtists.Long)
	if len(genres) == 0 {
		return Spec{}, unavailable(s, "seed tracks or top artist genres")
	}
	return Spec{SeedGenres: genres}, nil
}

func buildReturnFamiliar(s Strategy, sig Signal) (Spec, error) {
	var ids []string
	for _, t := range sig.PlaylistTracks {
		ids = append(ids, t.ArtistIDs...)
	}
	artists := distinct(maxSeeds, ids)
	if len(artists) == 0 {
		return Spec{}, unavailable(s, "artists on the playlist")
	}
	return Spec{SeedArtists: artists}, nil
}

func buildEnergyAdjust(s Strategy, sig Signal) (Spec, error) {
	spec, err := buildTrackSeeds(s, sig)
	if err != nil {
		return Spec{}, err
	}
	mean, ok := meanEnergy(sig)
	if !ok {
		return Spec{}, unavailable(s, "audio features for playlist tracks")
	}
	target := mean + energyShift
	if mean >= highEnergy {
		target = mean - energyShift
	}
	t := *unit(target)
	spec.Targets = &TargetRanges{
		TargetEnergy: &t,
		MinEnergy:    unit(t - energyBand),
		MaxEnergy:    unit(t + energyBand),
	}
	return spec, nil
}

func buildProfessionalDiscovery(s Strategy, sig Signal) (Spec, error) {
	ids := distinct(maxSeeds,
		sig.TopTracks.Short, sig.TopTracks.Medium, sig.TopTracks.Long,
		sig.SavedTracks, sig.RecentlyPlayed)
	if len(ids) == 0 {
		return Spec{}, unavailable(s, "top, saved or recently played tracks")
	}
	return Spec{SeedTracks: ids}, nil
}

func buildTasteExpansion(s Strategy, sig Signal) (Spec, error) {
	tracks := distinct(expansionTrackSeeds, sig.TopTracks.Short, sig.TopTracks.Medium, sig.TopTracks.Long)
	genres := artistGenres(expansionGenreSeeds, sig.TopArtists.Short, sig.TopArtists.Medium, sig.TopArtists.Long)
	if len(tracks) == 0 && len(genres) == 0 {
		return Spec{}, unavailable(s, "top tracks or top artists")
	}
	return Spec{SeedTracks: tracks, SeedGenres: genres}, nil
}

func buildDeepCuts(s Strategy, sig Signal) (Spec, error) {
	var artists []string
	for _, window := range [][]Artist{sig.TopArtists.Long, sig.TopArtists.Medium, sig.TopArtists.Short} {
		ids := make([]string, 0, len(window))
		for _, a := range window {
			ids = append(ids, a.ID)
		}
		if artists = distinct(maxSeeds, ids); len(artists) > 0 {
			break
		}
	}
	if len(artists) == 0 {
		return Spec{}, unavailable(s, "top artists")
	}
	pop := deepCutPopularity
	return Spec{SeedArtists: artists, Targets: &TargetRanges{TargetPopularity: &pop}}, nil
}

func buildContinueSession(s Strategy, sig Signal) (Spec, error) {
	ids := distinct(maxSeeds, sig.RecentlyPlayed)
	if len(ids) == 0 {
		return Spec{}, unavailable(s, "recently played tracks")
	}
	return Spec{SeedTracks: ids}, nil
}

func buildFromLibrary(s Strategy, sig Signal) (Spec, error) {
	ids := distinct(maxSeeds, sig.SavedTracks)
	if len(ids) == 0 {
		return Spec{}, unavailable(s, "saved tracks")
	}
	return Spec{SeedTracks: ids}, nil
}
