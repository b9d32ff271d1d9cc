package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/playlab/internal/app"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/seeds"
	"github.com/okian/playlab/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func track(id string, energy, dance, valence, acoustic, instrumental float64) model.Track {
	return model.Track{
		ID:            id,
		Name:          "Track " + id,
		PrimaryArtist: "Artist " + id,
		Features: &model.RawFeatures{
			Energy: f(energy), Danceability: f(dance), Valence: f(valence),
			Acousticness: f(acoustic), Instrumentalness: f(instrumental), Tempo: f(120),
		},
	}
}

func experimentalInput(id string) model.AnalyzeInput {
	return model.AnalyzeInput{
		PlaylistID: id,
		Tracks: []model.Track{
			track("a", 0.9, 0.2, 0.5, 0.1, 0.5),
			track("b", 0.9, 0.2, 0.5, 0.1, 0.5),
			track("c", 0.9, 0.2, 0.5, 0.1, 0.5),
		},
		GenreTags:  []string{"rock", "Rock", "indie  rock"},
		TrackCount: 3,
	}
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func stopService(svc *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = svc.Stop(ctx)
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(3),
			service.WithQueueSize(64),
			service.WithDedupeSize(128),
			service.WithJobRetention(10),
			service.WithMaxLeaderboardEntries(100),
		)

		Convey("Then reads fail before Start", func() {
			_, err := svc.TopN(context.Background(), 5)
			So(errors.Is(err, types.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Then engine calls fail before Start and after Stop", func() {
			ctx := context.Background()
			in := experimentalInput("pl-closed")

			_, err := svc.Analyze(ctx, in)
			So(errors.Is(err, types.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Battle(ctx, model.BattleInput{})
			So(errors.Is(err, types.ErrNotStarted), ShouldBeTrue)
			_, err = svc.SelectSeeds(ctx, string(seeds.BestNext), seeds.Signal{})
			So(errors.Is(err, types.ErrNotStarted), ShouldBeTrue)

			So(svc.Start(ctx), ShouldBeNil)
			_, err = svc.Analyze(ctx, in)
			So(err, ShouldBeNil)
			stopService(svc)

			_, err = svc.Analyze(ctx, experimentalInput("pl-late"))
			So(errors.Is(err, types.ErrNotStarted), ShouldBeTrue)

			So(svc.Start(ctx), ShouldBeNil)
			defer stopService(svc)
			So(svc.GetStats()["rankedPlaylists"], ShouldEqual, 0)
		})

		Convey("When the service is started twice and stopped", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			stats := svc.GetStats()

			Convey("Then stats reflect the configuration", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 3)
				So(stats["queueSize"], ShouldEqual, 64)
				So(stats["queueLength"], ShouldEqual, 0)
				So(stats["rankedPlaylists"], ShouldEqual, 0)
			})

			stopService(svc)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Stop(context.Background()), ShouldBeNil)
		})
	})
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(service.WithWorkerCount(1))
		defer stopService(svc)
		ctx := context.Background()

		Convey("When a playlist with an id is analyzed", func() {
			res, err := svc.Analyze(ctx, experimentalInput("pl-1"))
			So(err, ShouldBeNil)

			Convey("Then it is ranked with its health score", func() {
				entry, err := svc.Rank(ctx, "pl-1")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
				So(entry.HealthScore, ShouldEqual, res.HealthScore)
				So(entry.HealthStatus, ShouldEqual, res.HealthStatus)
				So(entry.OverallRating, ShouldEqual, res.OverallRating)
				So(entry.Personality, ShouldEqual, "The Experimentalist")
			})
		})

		Convey("When a playlist without an id is analyzed", func() {
			in := experimentalInput("")
			_, err := svc.Analyze(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then the leaderboard is untouched", func() {
				top, err := svc.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(top, ShouldBeEmpty)
			})
		})

		Convey("When the input has no usable data", func() {
			_, err := svc.Analyze(ctx, model.AnalyzeInput{PlaylistID: "pl-x", TrackCount: 0})

			Convey("Then the engine error kind is preserved and nothing is ranked", func() {
				So(errors.Is(err, model.ErrDataInsufficient), ShouldBeTrue)
				_, rerr := svc.Rank(ctx, "pl-x")
				So(errors.Is(rerr, types.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_BattleAndSeeds(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(service.WithWorkerCount(1))
		defer stopService(svc)
		ctx := context.Background()

		Convey("When identical playlists battle", func() {
			side := model.BattleSide{
				Tracks:    experimentalInput("").Tracks,
				GenreTags: []string{"rock"},
				Artists:   []string{"Ride"},
			}
			res, err := svc.Battle(ctx, model.BattleInput{Playlist1: side, Playlist2: side})

			Convey("Then the result is a tie with everything shared", func() {
				So(err, ShouldBeNil)
				So(string(res.Winner), ShouldEqual, "tie")
				So(res.SharedTracks, ShouldResemble, []string{"a", "b", "c"})
				So(res.SharedArtists, ShouldResemble, []string{"Ride"})
			})
		})

		Convey("When seeds are requested for an unknown strategy", func() {
			_, err := svc.SelectSeeds(ctx, "telepathy", seeds.Signal{})

			Convey("Then it is a validation error", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When seeds are requested without any signal", func() {
			spec, err := svc.SelectSeeds(ctx, string(seeds.BestNext), seeds.Signal{})

			Convey("Then the generic fallback is used", func() {
				So(err, ShouldBeNil)
				So(spec.Generic, ShouldBeTrue)
				So(spec.SeedGenres, ShouldResemble, []string{"pop", "indie", "rock"})
			})
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given several analyzed playlists", t, func() {
		svc := startService(service.WithWorkerCount(1))
		defer stopService(svc)
		ctx := context.Background()

		calm := model.AnalyzeInput{
			PlaylistID: "pl-calm",
			Tracks: []model.Track{
				track("x", 0.2, 0.3, 0.2, 0.9, 0.0),
				track("y", 0.25, 0.35, 0.25, 0.85, 0.0),
			},
			TrackCount: 2,
		}
		for _, in := range []model.AnalyzeInput{experimentalInput("pl-b"), experimentalInput("pl-a"), calm} {
			_, err := svc.Analyze(ctx, in)
			So(err, ShouldBeNil)
		}

		top, err := svc.TopN(ctx, 10)

		Convey("Then entries are ordered by health desc then id", func() {
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 3)
			for i := 1; i < len(top); i++ {
				prev, cur := top[i-1], top[i]
				So(prev.HealthScore >= cur.HealthScore, ShouldBeTrue)
				if prev.HealthScore == cur.HealthScore {
					So(prev.PlaylistID < cur.PlaylistID, ShouldBeTrue)
					So(prev.Rank, ShouldEqual, cur.Rank)
				}
			}
		})

		Convey("Then ties share a rank", func() {
			a, _ := svc.Rank(ctx, "pl-a")
			b, _ := svc.Rank(ctx, "pl-b")
			So(a.Rank, ShouldEqual, b.Rank)
		})

		Convey("Then an invalid limit is rejected", func() {
			_, err := svc.TopN(ctx, 0)
			So(err, ShouldNotBeNil)
		})
	})
}
