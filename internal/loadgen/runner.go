package loadgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/playlab/internal/domain/analysis"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/seeds"
	"github.com/okian/playlab/pkg/logger"
)

const (
	pollInterval  = 20 * time.Millisecond
	outputDirPerm = 0o750
	outputPerm    = 0o600
)

// ErrVerification is returned when the observed leaderboard disagrees with
// the analyses the run submitted.
var ErrVerification = errors.New("leaderboard verification failed")

// Run executes a complete load run against cfg.BaseURL.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("playlists", cfg.Playlists),
		logger.Int("tracksPerPlaylist", cfg.TracksPerPlaylist),
		logger.Int("battles", cfg.Battles),
		logger.Int("workers", cfg.Workers),
		logger.Bool("async", cfg.Async))

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	playlists := NewGenerator(cfg.Seed).Playlists(cfg.Playlists, cfg.TracksPerPlaylist)
	stats.PlaylistsGenerated = len(playlists)
	if cfg.OutputFile != "" {
		if err := savePlaylists(cfg.OutputFile, playlists); err != nil {
			return stats, err
		}
	}

	r := &runner{cfg: cfg, client: client, log: log, stats: stats}
	scores := r.analyze(ctx, playlists)
	r.battle(ctx, playlists)
	r.seeds(ctx, playlists)

	entries, err := client.Leaderboard(ctx, cfg.TopN)
	if err != nil {
		return stats, fmt.Errorf("fetch leaderboard: %w", err)
	}
	stats.LeaderboardEntries = len(entries)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)

	problems := VerifyLeaderboard(entries, scores)
	if want := expectedTop(len(scores), cfg.TopN); len(entries) < want {
		problems = append(problems, fmt.Sprintf("leaderboard has %d entries, want at least %d", len(entries), want))
	}
	for _, p := range problems {
		log.Error(ctx, "leaderboard mismatch", logger.String("problem", p))
	}
	if len(problems) > 0 {
		return stats, fmt.Errorf("%w: %d problems", ErrVerification, len(problems))
	}
	log.Info(ctx, "leaderboard verified", logger.Int("entries", len(entries)))
	return stats, nil
}

type runner struct {
	cfg    Config
	client *Client
	log    logger.Logger
	stats  *Stats
}

// fanOut runs fn for 0..n-1 on cfg.Workers goroutines.
func (r *runner) fanOut(ctx context.Context, n int, fn func(i int)) {
	work := make(chan int, r.cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < max(1, r.cfg.Workers); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					continue
				}
				fn(i)
			}
		}()
	}

	go func() {
		defer close(work)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()
}

// analyze scores every playlist and returns the health score per playlist
// id for the ones that succeeded.
func (r *runner) analyze(ctx context.Context, playlists []model.AnalyzeInput) map[string]int {
	var (
		mu     sync.Mutex
		scores = make(map[string]int, len(playlists))

		ok, failed, submitted, duplicates, jobsFailed int64
	)
	record := func(id string, score int) {
		mu.Lock()
		scores[id] = score
		mu.Unlock()
		atomic.AddInt64(&ok, 1)
	}

	dupRNG := rand.New(rand.NewSource(r.cfg.Seed + 1)) //nolint:gosec // synthetic data
	repeat := make([]bool, len(playlists))
	for i := range repeat {
		repeat[i] = dupRNG.Float64() < r.cfg.DuplicateRate
	}

	r.fanOut(ctx, len(playlists), func(i int) {
		in := playlists[i]
		if !r.cfg.Async {
			res, err := r.client.Analyze(ctx, in)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				r.failure(ctx, "analyze", in.PlaylistID, err)
				return
			}
			record(in.PlaylistID, res.HealthScore)
			return
		}

		key := "analyze-" + in.PlaylistID
		id, _, err := r.client.SubmitAnalyze(ctx, key, in)
		if err != nil {
			atomic.AddInt64(&failed, 1)
			r.failure(ctx, "submit", in.PlaylistID, err)
			return
		}
		atomic.AddInt64(&submitted, 1)
		if repeat[i] {
			again, dup, err := r.client.SubmitAnalyze(ctx, key, in)
			if err == nil && dup && again == id {
				atomic.AddInt64(&duplicates, 1)
			} else {
				r.failure(ctx, "resubmit", in.PlaylistID, fmt.Errorf("want duplicate of %s, got %s (dup=%t): %w", id, again, dup, err))
			}
		}

		wctx, cancel := context.WithTimeout(ctx, r.cfg.JobWait)
		defer cancel()
		st, err := r.client.WaitJob(wctx, id, pollInterval)
		if err != nil {
			atomic.AddInt64(&failed, 1)
			r.failure(ctx, "wait", in.PlaylistID, err)
			return
		}
		if st.Status != "done" {
			atomic.AddInt64(&jobsFailed, 1)
			atomic.AddInt64(&failed, 1)
			if st.Error != nil {
				r.failure(ctx, "job", in.PlaylistID, st.Error)
			}
			return
		}
		var res analysis.Result
		if err := json.Unmarshal(st.Result, &res); err != nil {
			atomic.AddInt64(&failed, 1)
			r.failure(ctx, "decode", in.PlaylistID, err)
			return
		}
		record(in.PlaylistID, res.HealthScore)
	})

	r.stats.Analyzed = int(ok)
	r.stats.AnalyzeFailed = int(failed)
	r.stats.JobsSubmitted = int(submitted)
	r.stats.JobsDuplicate = int(duplicates)
	r.stats.JobsFailed = int(jobsFailed)
	return scores
}

// battle pits random pairs of playlists against each other and checks the
// score is symmetric.
func (r *runner) battle(ctx context.Context, playlists []model.AnalyzeInput) {
	if len(playlists) < 2 || r.cfg.Battles <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(r.cfg.Seed + 2)) //nolint:gosec // synthetic data
	pairs := make([][2]int, r.cfg.Battles)
	for i := range pairs {
		a := rng.Intn(len(playlists))
		b := (a + 1 + rng.Intn(len(playlists)-1)) % len(playlists)
		pairs[i] = [2]int{a, b}
	}

	var ok, failed int64
	r.fanOut(ctx, len(pairs), func(i int) {
		a, b := playlists[pairs[i][0]], playlists[pairs[i][1]]
		fwd, err := r.client.Battle(ctx, Battle(a, b))
		if err == nil {
			var rev analysis.BattleResult
			rev, err = r.client.Battle(ctx, Battle(b, a))
			if err == nil && rev.CompatibilityScore != fwd.CompatibilityScore {
				err = fmt.Errorf("compatibility %d one way, %d the other", fwd.CompatibilityScore, rev.CompatibilityScore)
			}
		}
		if err != nil {
			atomic.AddInt64(&failed, 1)
			r.failure(ctx, "battle", a.PlaylistID+" vs "+b.PlaylistID, err)
			return
		}
		atomic.AddInt64(&ok, 1)
	})
	r.stats.Battles = int(ok)
	r.stats.BattlesFailed = int(failed)
}

// seeds asks for every strategy once with the first playlist as signal.
func (r *runner) seeds(ctx context.Context, playlists []model.AnalyzeInput) {
	var sig seeds.Signal
	if len(playlists) > 0 {
		sig.PlaylistTracks = playlists[0].Tracks
		for _, t := range playlists[0].Tracks {
			sig.RecentlyPlayed = append(sig.RecentlyPlayed, t.ID)
		}
	}
	for _, s := range seeds.Strategies() {
		if ctx.Err() != nil {
			return
		}
		r.stats.SeedRequests++
		if _, err := r.client.Seeds(ctx, s, sig); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Code == "seed_unavailable" {
				r.stats.SeedUnavailable++
				continue
			}
			r.failure(ctx, "seeds", string(s), err)
		}
	}
}

func (r *runner) failure(ctx context.Context, step, subject string, err error) {
	if !r.cfg.Verbose {
		return
	}
	r.log.Warn(ctx, "request failed",
		logger.String("step", step),
		logger.String("subject", subject),
		logger.Error(err))
}

func savePlaylists(path string, playlists []model.AnalyzeInput) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, outputDirPerm); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(playlists, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal playlists: %w", err)
	}
	if err := os.WriteFile(path, data, outputPerm); err != nil {
		return fmt.Errorf("write playlists: %w", err)
	}
	return nil
}

func logStats(ctx context.Context, log logger.Logger, s *Stats) {
	log.Info(ctx, "load run finished",
		logger.Int("playlists", s.PlaylistsGenerated),
		logger.Int("analyzed", s.Analyzed),
		logger.Int("analyzeFailed", s.AnalyzeFailed),
		logger.Int("jobsSubmitted", s.JobsSubmitted),
		logger.Int("jobsDuplicate", s.JobsDuplicate),
		logger.Int("jobsFailed", s.JobsFailed),
		logger.Int("battles", s.Battles),
		logger.Int("battlesFailed", s.BattlesFailed),
		logger.Int("seedRequests", s.SeedRequests),
		logger.Int("seedUnavailable", s.SeedUnavailable),
		logger.Int("leaderboardEntries", s.LeaderboardEntries),
		logger.Duration("duration", s.Duration))
}
