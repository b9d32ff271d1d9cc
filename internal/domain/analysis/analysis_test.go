package analysis_test

import (
	"errors"
	"testing"

	"github.com/okian/playlab/internal/domain/analysis"
	"github.com/okian/playlab/internal/domain/compat"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/personality"
	"github.com/okian/playlab/internal/domain/seeds"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func experimental(id string) model.Track {
	return model.Track{
		ID:            id,
		Name:          "Track " + id,
		PrimaryArtist: "Artist " + id,
		Features: &model.RawFeatures{
			Energy: f(0.9), Danceability: f(0.2), Valence: f(0.5),
			Acousticness: f(0.1), Instrumentalness: f(0.5), Tempo: f(130),
		},
	}
}

func TestAnalyze(t *testing.T) {
	Convey("Given three high-energy instrumental tracks", t, func() {
		in := model.AnalyzeInput{
			PlaylistID: "pl-1",
			Tracks:     []model.Track{experimental("a"), experimental("b"), experimental("c"), {ID: "d"}},
			GenreTags:  []string{"rock", "Rock", "indie  rock"},
			TrackCount: 3,
		}

		res, err := analysis.Analyze(in)

		Convey("Then every part of the result is derived from the vectors", func() {
			So(err, ShouldBeNil)
			So(res.PlaylistID, ShouldEqual, "pl-1")
			So(res.Personality, ShouldResemble, personality.Experimentalist)
			So(res.AudioDNA, ShouldResemble, model.AudioDNA{
				Energy: 90, Danceability: 20, Valence: 50, Acousticness: 10, Instrumentalness: 50, Tempo: 50,
			})
			So(res.GenreDistribution, ShouldResemble, []model.GenreShare{
				{Name: "Rock", Percent: 67},
				{Name: "Indie Rock", Percent: 33},
			})
			So(res.Subgenres, ShouldBeEmpty)
			So(res.GenreFallback, ShouldBeFalse)
			So(res.HealthScore, ShouldEqual, 76)
			So(res.HealthStatus, ShouldEqual, "Great")
			So(res.OverallRating, ShouldEqual, 3.4)
			So(res.RatingDescription, ShouldEqual, "Good foundation")
		})

		Convey("Then tracks without features are left out of the top tracks", func() {
			So(res.TopTracks, ShouldHaveLength, 3)
			So(res.TopTracks[0], ShouldResemble, model.TrackRef{ID: "a", Name: "Track a", PrimaryArtist: "Artist a"})
		})
	})

	Convey("Given a track count of zero", t, func() {
		_, err := analysis.Analyze(model.AnalyzeInput{Tracks: []model.Track{experimental("a")}})

		Convey("Then the data is insufficient", func() {
			So(errors.Is(err, model.ErrDataInsufficient), ShouldBeTrue)
		})
	})

	Convey("Given tracks none of which carry features", t, func() {
		_, err := analysis.Analyze(model.AnalyzeInput{Tracks: []model.Track{{ID: "a"}}, TrackCount: 1})

		Convey("Then the data is insufficient", func() {
			So(errors.Is(err, model.ErrDataInsufficient), ShouldBeTrue)
		})
	})

	Convey("Given a track without an id", t, func() {
		_, err := analysis.Analyze(model.AnalyzeInput{Tracks: []model.Track{{}}, TrackCount: 1})

		Convey("Then validation fails", func() {
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given more than five usable tracks", t, func() {
		var tracks []model.Track
		for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
			tracks = append(tracks, experimental(id))
		}
		res, err := analysis.Analyze(model.AnalyzeInput{Tracks: tracks, TrackCount: len(tracks)})

		Convey("Then only the first five are top tracks and the genre fallback is used", func() {
			So(err, ShouldBeNil)
			So(res.TopTracks, ShouldHaveLength, 5)
			So(res.TopTracks[4].ID, ShouldEqual, "5")
			So(res.GenreFallback, ShouldBeTrue)
			So(res.GenreDistribution, ShouldResemble, []model.GenreShare{{Name: "Electronic", Percent: 30}})
		})
	})
}

func TestBattle(t *testing.T) {
	Convey("Given two playlists with identical tracks", t, func() {
		side := model.BattleSide{
			Tracks:    []model.Track{experimental("a"), experimental("b")},
			GenreTags: []string{"shoegaze", "Dream Pop"},
			Artists:   []string{"Slowdive", "Ride"},
		}
		other := side
		other.GenreTags = []string{"dream pop"}
		other.Artists = []string{"Ride"}

		res, err := analysis.Battle(model.BattleInput{Playlist1: side, Playlist2: other})

		Convey("Then compatibility is 92 and the battle is a tie", func() {
			So(err, ShouldBeNil)
			So(res.CompatibilityScore, ShouldEqual, 92)
			So(res.Playlist1Score, ShouldEqual, 60)
			So(res.Playlist2Score, ShouldEqual, 60)
			So(res.Winner, ShouldEqual, compat.Tie)
		})

		Convey("Then shared content is intersected", func() {
			So(res.SharedTracks, ShouldResemble, []string{"a", "b"})
			So(res.SharedArtists, ShouldResemble, []string{"Ride"})
			So(res.SharedGenres, ShouldResemble, []string{"Dream Pop"})
			So(res.AudioData.Playlist1, ShouldResemble, res.AudioData.Playlist2)
		})
	})

	Convey("Given a side whose tracks have no features", t, func() {
		res, err := analysis.Battle(model.BattleInput{
			Playlist1: model.BattleSide{Tracks: []model.Track{experimental("a")}},
			Playlist2: model.BattleSide{TrackIDs: []string{"z"}},
		})

		Convey("Then the battle degrades instead of failing", func() {
			So(err, ShouldBeNil)
			So(res.CompatibilityScore, ShouldEqual, 0)
			So(res.Playlist2Score, ShouldEqual, 0)
			So(res.Winner, ShouldEqual, compat.Playlist1)
			So(res.AudioData.Playlist2, ShouldResemble, model.AudioDNA{})
			So(res.SharedTracks, ShouldBeEmpty)
		})
	})

	Convey("Given a side with no tracks at all", t, func() {
		_, err := analysis.Battle(model.BattleInput{
			Playlist1: model.BattleSide{Tracks: []model.Track{experimental("a")}},
		})

		Convey("Then the data is insufficient", func() {
			So(errors.Is(err, model.ErrDataInsufficient), ShouldBeTrue)
		})
	})
}

func TestSelectSeeds(t *testing.T) {
	Convey("Given return_familiar with no playlist tracks", t, func() {
		_, err := analysis.SelectSeeds("return_familiar", seeds.Signal{PlaylistTracks: []model.Track{}})

		Convey("Then the seed is unavailable", func() {
			So(errors.Is(err, seeds.ErrSeedUnavailable), ShouldBeTrue)
		})
	})
}
