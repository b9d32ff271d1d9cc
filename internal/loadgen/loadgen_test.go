package loadgen_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/playlab/internal/adapters/http/api"
	app "github.com/okian/playlab/internal/app"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/seeds"
	"github.com/okian/playlab/internal/loadgen"
)

func TestGenerator(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		a := loadgen.NewGenerator(7).Playlists(5, 12)
		b := loadgen.NewGenerator(7).Playlists(5, 12)

		Convey("Then they produce identical playlists", func() {
			So(a, ShouldResemble, b)
		})

		Convey("Then playlists have distinct ids and the requested shape", func() {
			seen := map[string]bool{}
			for _, p := range a {
				So(seen[p.PlaylistID], ShouldBeFalse)
				seen[p.PlaylistID] = true
				So(p.Tracks, ShouldHaveLength, 12)
				So(p.TrackCount, ShouldEqual, 12)
				for _, tr := range p.Tracks {
					So(tr.ID, ShouldNotBeEmpty)
					if f := tr.Features; f != nil {
						So(*f.Energy, ShouldBeBetweenOrEqual, 0, 1)
						So(*f.Instrumentalness, ShouldBeBetweenOrEqual, 0, 1)
					}
				}
			}
		})
	})

	Convey("Given a different seed", t, func() {
		a := loadgen.NewGenerator(1).Playlists(1, 3)
		b := loadgen.NewGenerator(2).Playlists(1, 3)

		Convey("Then the ids differ", func() {
			So(a[0].PlaylistID, ShouldNotEqual, b[0].PlaylistID)
		})
	})

	Convey("Given a battle built from two playlists", t, func() {
		ps := loadgen.NewGenerator(3).Playlists(2, 4)
		in := loadgen.Battle(ps[0], ps[1])

		Convey("Then each side carries its playlist's tracks and ids", func() {
			So(in.Playlist1.PlaylistID, ShouldEqual, ps[0].PlaylistID)
			So(in.Playlist2.Tracks, ShouldResemble, ps[1].Tracks)
			So(in.Playlist1.TrackIDs, ShouldHaveLength, 4)
			So(in.Playlist1.TrackIDs[0], ShouldEqual, ps[0].Tracks[0].ID)
		})
	})
}

func TestVerifyLeaderboard(t *testing.T) {
	Convey("Given a well-formed leaderboard with a tie", t, func() {
		entries := []loadgen.Entry{
			{Rank: 1, PlaylistID: "a", HealthScore: 90},
			{Rank: 2, PlaylistID: "b", HealthScore: 80},
			{Rank: 2, PlaylistID: "c", HealthScore: 80},
			{Rank: 4, PlaylistID: "d", HealthScore: 70},
		}

		Convey("Then there are no problems", func() {
			So(loadgen.VerifyLeaderboard(entries, map[string]int{"a": 90, "d": 70}), ShouldBeEmpty)
		})

		Convey("Then a score the run did not observe is reported", func() {
			So(loadgen.VerifyLeaderboard(entries, map[string]int{"b": 81}), ShouldHaveLength, 1)
		})
	})

	Convey("Given broken leaderboards", t, func() {
		Convey("Then an out-of-order score is reported", func() {
			problems := loadgen.VerifyLeaderboard([]loadgen.Entry{
				{Rank: 1, PlaylistID: "a", HealthScore: 50},
				{Rank: 2, PlaylistID: "b", HealthScore: 60},
			}, nil)
			So(problems, ShouldHaveLength, 1)
		})

		Convey("Then dense ranks are reported", func() {
			problems := loadgen.VerifyLeaderboard([]loadgen.Entry{
				{Rank: 1, PlaylistID: "a", HealthScore: 90},
				{Rank: 1, PlaylistID: "b", HealthScore: 90},
				{Rank: 2, PlaylistID: "c", HealthScore: 80},
			}, nil)
			So(problems, ShouldHaveLength, 1)
		})

		Convey("Then split ties are reported", func() {
			problems := loadgen.VerifyLeaderboard([]loadgen.Entry{
				{Rank: 1, PlaylistID: "a", HealthScore: 90},
				{Rank: 2, PlaylistID: "b", HealthScore: 90},
			}, nil)
			So(problems, ShouldHaveLength, 1)
		})

		Convey("Then a first entry off rank one is reported", func() {
			So(loadgen.VerifyLeaderboard([]loadgen.Entry{{Rank: 2, PlaylistID: "a"}}, nil), ShouldHaveLength, 1)
		})
	})
}

func newTarget(t *testing.T) *httptest.Server {
	t.Helper()
	svc := app.New(app.WithWorkerCount(4))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Stop(context.Background())
	})
	return srv
}

func baseConfig(url string) loadgen.Config {
	return loadgen.Config{
		BaseURL:           url,
		Playlists:         20,
		TracksPerPlaylist: 8,
		Battles:           5,
		TopN:              10,
		Workers:           4,
		Timeout:           5 * time.Second,
		JobWait:           10 * time.Second,
		Seed:              42,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv := newTarget(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When playlists are analyzed synchronously", func() {
			cfg := baseConfig(srv.URL)
			cfg.OutputFile = filepath.Join(t.TempDir(), "out", "playlists.json")
			stats, err := loadgen.Run(ctx, cfg)

			Convey("Then every call succeeds and the leaderboard verifies", func() {
				So(err, ShouldBeNil)
				So(stats.PlaylistsGenerated, ShouldEqual, 20)
				So(stats.Analyzed, ShouldEqual, 20)
				So(stats.AnalyzeFailed, ShouldEqual, 0)
				So(stats.Battles, ShouldEqual, 5)
				So(stats.BattlesFailed, ShouldEqual, 0)
				So(stats.SeedRequests, ShouldEqual, len(seeds.Strategies()))
				So(stats.LeaderboardEntries, ShouldEqual, 10)
			})

			Convey("Then the generated playlists are saved", func() {
				data, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var saved []model.AnalyzeInput
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 20)
			})
		})

		Convey("When playlists are submitted as jobs with repeated keys", func() {
			cfg := baseConfig(srv.URL)
			cfg.Async = true
			cfg.DuplicateRate = 1
			stats, err := loadgen.Run(ctx, cfg)

			Convey("Then every resubmission is deduplicated", func() {
				So(err, ShouldBeNil)
				So(stats.JobsSubmitted, ShouldEqual, 20)
				So(stats.JobsDuplicate, ShouldEqual, 20)
				So(stats.JobsFailed, ShouldEqual, 0)
				So(stats.Analyzed, ShouldEqual, 20)
			})
		})
	})

	Convey("Given no service at the address", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		cfg := baseConfig(srv.URL)
		cfg.Timeout = time.Second

		Convey("Then the health check fails", func() {
			_, err := loadgen.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestClientErrors(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv := newTarget(t)
		c := loadgen.NewClient(srv.URL, 5*time.Second)
		ctx := context.Background()

		Convey("Then an unknown playlist maps to a not_found API error", func() {
			_, err := c.Rank(ctx, "missing")
			var apiErr *loadgen.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusNotFound)
			So(apiErr.Code, ShouldEqual, "not_found")
		})

		Convey("Then a strategy without its signal reports the missing signal", func() {
			_, err := c.Seeds(ctx, seeds.ReturnFamiliar, seeds.Signal{})
			var apiErr *loadgen.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Code, ShouldEqual, "seed_unavailable")
			So(apiErr.Signal, ShouldNotBeEmpty)
		})
	})
}
