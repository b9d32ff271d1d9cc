package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/playlab/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it has sensible defaults that validate", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.JobRetention, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.MaxTracksPerPlaylist, convey.ShouldEqual, 10_000)
			convey.So(cfg.RateLimitWindow(), convey.ShouldEqual, time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":             func(c *config.Config) { c.Addr = "" },
			"unknown log format":     func(c *config.Config) { c.LogFormat = "xml" },
			"zero queue":             func(c *config.Config) { c.QueueSize = 0 },
			"negative workers":       func(c *config.Config) { c.WorkerCount = -1 },
			"zero dedupe":            func(c *config.Config) { c.DedupeSize = 0 },
			"zero retention":         func(c *config.Config) { c.JobRetention = 0 },
			"zero leaderboard limit": func(c *config.Config) { c.MaxLeaderboardLimit = 0 },
			"zero tracks":            func(c *config.Config) { c.MaxTracksPerPlaylist = 0 },
			"negative entries":       func(c *config.Config) { c.MaxLeaderboardEntries = -1 },
			"negative rate":          func(c *config.Config) { c.RateLimitRequests = -1 },
			"rate without window":    func(c *config.Config) { c.RateLimitWindowMS = 0 },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldNotBeEmpty)
			_ = name
		}

		convey.Convey("Then rate limiting may be disabled without a window", func() {
			cfg := config.New()
			cfg.RateLimitRequests = 0
			cfg.RateLimitWindowMS = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
