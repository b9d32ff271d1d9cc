// Command loadgen drives a running playlab service with seeded synthetic
// playlists and verifies the leaderboard it observes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/playlab/internal/loadgen"
	"github.com/okian/playlab/pkg/logger"
)

// Default configuration constants.
const (
	defaultPlaylists   = 1000
	defaultTracks      = 30
	defaultBattles     = 200
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultJobWait     = time.Minute
	defaultRunTimeout  = 10 * time.Minute
	defaultDuplicates  = 0.1
	defaultGeneratorID = 1
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		playlists  = flag.Int("playlists", defaultPlaylists, "Number of playlists to generate and analyze")
		tracks     = flag.Int("tracks", defaultTracks, "Tracks per playlist")
		battles    = flag.Int("battles", defaultBattles, "Number of battles between random playlist pairs")
		async      = flag.Bool("async", false, "Submit analyses as async jobs")
		duplicates = flag.Float64("duplicates", defaultDuplicates, "Share of async jobs resubmitted with the same Idempotency-Key")
		topN       = flag.Int("top", defaultTopN, "Number of leaderboard entries to verify")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		jobWait    = flag.Duration("job-wait", defaultJobWait, "How long to wait for each async job")
		seed       = flag.Int64("seed", defaultGeneratorID, "Seed of the playlist generator")
		outputFile = flag.String("output", "", "Write the generated playlists to this JSON file")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log every failed request")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := loadgen.Config{
		BaseURL:           *baseURL,
		Playlists:         *playlists,
		TracksPerPlaylist: *tracks,
		Battles:           *battles,
		Async:             *async,
		DuplicateRate:     *duplicates,
		TopN:              *topN,
		Workers:           *workers,
		Timeout:           *timeout,
		JobWait:           *jobWait,
		Seed:              *seed,
		OutputFile:        *outputFile,
		Verbose:           *verbose,
	}

	if _, err := loadgen.Run(ctx, cfg); err != nil {
		log.Error(ctx, "load run failed", logger.Error(err))
		os.Exit(1)
	}
}
