// Package service wires the analytics engine to the job queue, worker pool,
// job store and leaderboard, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/playlab/internal/adapters/mq/queue"
	"github.com/okian/playlab/internal/adapters/mq/worker"
	"github.com/okian/playlab/internal/adapters/repository"
	"github.com/okian/playlab/internal/domain/analysis"
	"github.com/okian/playlab/internal/domain/dedupe"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/seeds"
	"github.com/okian/playlab/internal/domain/types"
	"github.com/okian/playlab/pkg/logger"
	"github.com/okian/playlab/pkg/metrics"
)

// Service runs engine calls synchronously and as queued jobs.
type Service struct {
	mu sync.RWMutex

	leaderboard repository.Store
	jobs        *repository.JobStore
	deduper     dedupe.Deduper
	queue       queue.Queue
	pool        *worker.Pool
	cancel      context.CancelFunc

	workerCount           int
	queueSize             int
	dedupeSize            int
	jobRetention          int
	maxLeaderboardEntries int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the job queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobRetention sets how many finished jobs are kept for polling.
func WithJobRetention(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.jobRetention = n
		}
	}
}

// WithMaxLeaderboardEntries bounds the leaderboard. Zero means unbounded.
func WithMaxLeaderboardEntries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxLeaderboardEntries = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Components are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    1024,
		dedupeSize:   100_000,
		jobRetention: 10_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the stores and queue and starts the worker pool. Workers
// outlive ctx; they stop in Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.leaderboard = repository.NewTreapStore(repository.WithMaxEntries(s.maxLeaderboardEntries))
	s.jobs = repository.NewJobStore(repository.WithRetention(s.jobRetention))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.jobs)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "playlist service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("job_retention", s.jobRetention),
	)
	return nil
}

// Stop drains queued jobs and stops the workers. Jobs still queued when ctx
// ends are abandoned. Submissions fail with types.ErrNotStarted while the
// pool drains.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool, cancel, q := s.pool, s.cancel, s.queue
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping playlist service", logger.Int("queued", q.Len(ctx)))
	// Draining workers record results under the read lock.
	err := pool.Shutdown(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "playlist service stopped")
	return nil
}

// Analyze runs a single-playlist analysis. A result with a playlist id is
// recorded on the leaderboard.
func (s *Service) Analyze(ctx context.Context, in model.AnalyzeInput) (analysis.Result, error) {
	if !s.running() {
		return analysis.Result{}, types.ErrNotStarted
	}
	return s.analyze(ctx, in)
}

// Battle compares two playlists.
func (s *Service) Battle(ctx context.Context, in model.BattleInput) (analysis.BattleResult, error) {
	if !s.running() {
		return analysis.BattleResult{}, types.ErrNotStarted
	}
	return s.battle(ctx, in)
}

// SelectSeeds picks the catalog query for a recommendation strategy.
func (s *Service) SelectSeeds(_ context.Context, strategy string, sig seeds.Signal) (seeds.Spec, error) {
	if !s.running() {
		return seeds.Spec{}, types.ErrNotStarted
	}
	spec, err := analysis.SelectSeeds(strategy, sig)
	metrics.RecordSeedSelection(strategy, outcome(err))
	if err != nil {
		return seeds.Spec{}, err
	}
	return spec, nil
}

// analyze and battle skip the started check: jobs accepted before Stop
// still run while the pool drains.
func (s *Service) analyze(ctx context.Context, in model.AnalyzeInput) (analysis.Result, error) {
	start := time.Now()
	res, err := analysis.Analyze(in)
	metrics.RecordAnalysis(outcome(err), res.HealthScore, sinceMs(start))
	if err != nil {
		return analysis.Result{}, err
	}

	if in.PlaylistID != "" {
		s.record(ctx, res)
	}
	return res, nil
}

func (s *Service) battle(_ context.Context, in model.BattleInput) (analysis.BattleResult, error) {
	start := time.Now()
	res, err := analysis.Battle(in)
	metrics.RecordBattle(outcome(err), res.CompatibilityScore, sinceMs(start))
	if err != nil {
		return analysis.BattleResult{}, err
	}
	return res, nil
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// SubmitJob queues job for the workers and returns its id. A non-empty key
// makes the submission idempotent: a repeated key returns the first job id
// with dup set. A full queue fails with types.ErrBackpressure and releases
// the key.
func (s *Service) SubmitJob(ctx context.Context, key string, job model.Job) (id string, dup bool, err error) {
	if err := checkJob(job); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", false, types.ErrNotStarted
	}

	id = uuid.NewString()
	if key != "" {
		if existing, seen := s.deduper.Claim(ctx, key, id); seen {
			metrics.RecordJobDuplicate()
			return existing, true, nil
		}
	}

	job.ID, job.Key, job.SubmittedAt = id, key, time.Now()
	s.jobs.Put(ctx, job)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.jobs.Delete(ctx, id)
		if key != "" {
			s.deduper.Release(ctx, key)
		}
		s.logger.Warn(ctx, "job rejected", logger.String("kind", string(job.Kind)), logger.Error(err))
		return "", false, fmt.Errorf("submit job: %w: %w", types.ErrBackpressure, err)
	}

	metrics.RecordJobSubmitted()
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return id, false, nil
}

// Job returns the current state of a submitted job.
func (s *Service) Job(ctx context.Context, id string) (types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Job{}, types.ErrNotStarted
	}

	rec, err := s.jobs.Get(ctx, id)
	if err != nil {
		return types.Job{}, notFound(err)
	}
	return types.Job{
		ID:          rec.ID,
		Kind:        string(rec.Kind),
		Status:      rec.Status,
		Result:      rec.Result,
		Err:         rec.Err,
		SubmittedAt: rec.SubmittedAt,
		FinishedAt:  rec.FinishedAt,
	}, nil
}

// Process runs a queued job through the engine. It implements worker.Processor.
func (s *Service) Process(ctx context.Context, job model.Job) (any, error) {
	if err := checkJob(job); err != nil {
		return nil, err
	}
	switch job.Kind {
	case model.JobAnalyze:
		res, err := s.analyze(ctx, *job.Analyze)
		if err != nil {
			return nil, err
		}
		return res, nil
	default:
		res, err := s.battle(ctx, *job.Battle)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

// TopN returns the n healthiest playlists.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, types.ErrNotStarted
	}

	entries, err := s.leaderboard.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = toEntry(e)
	}
	return out, nil
}

// Rank returns the leaderboard entry of a playlist.
func (s *Service) Rank(ctx context.Context, playlistID string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Entry{}, types.ErrNotStarted
	}

	e, err := s.leaderboard.Rank(ctx, playlistID)
	if err != nil {
		return types.Entry{}, notFound(err)
	}
	return toEntry(e), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"jobRetention": s.jobRetention,
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["rankedPlaylists"] = s.leaderboard.Count(ctx)
		stats["retainedJobs"] = s.jobs.Len()
		stats["idempotencyKeys"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}

func (s *Service) record(ctx context.Context, res analysis.Result) {
	s.mu.RLock()
	board := s.leaderboard
	s.mu.RUnlock()
	if board == nil {
		return
	}

	err := board.Upsert(ctx, repository.Entry{
		PlaylistID:    res.PlaylistID,
		HealthScore:   res.HealthScore,
		HealthStatus:  res.HealthStatus,
		OverallRating: res.OverallRating,
		Personality:   res.Personality.Name,
	})
	if err != nil {
		s.logger.Error(ctx, "leaderboard update failed", logger.String("playlist_id", res.PlaylistID), logger.Error(err))
	}
}

func checkJob(job model.Job) error {
	switch job.Kind {
	case model.JobAnalyze:
		if job.Analyze == nil {
			return fmt.Errorf("analyze job without input: %w", model.ErrValidation)
		}
	case model.JobBattle:
		if job.Battle == nil {
			return fmt.Errorf("battle job without input: %w", model.ErrValidation)
		}
	default:
		return fmt.Errorf("unknown job kind %q: %w", job.Kind, model.ErrValidation)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", types.ErrNotFound, err)
	}
	return err
}

func toEntry(e repository.Entry) types.Entry {
	return types.Entry{
		Rank:          e.Rank,
		PlaylistID:    e.PlaylistID,
		HealthScore:   e.HealthScore,
		HealthStatus:  e.HealthStatus,
		OverallRating: e.OverallRating,
		Personality:   e.Personality,
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, model.ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, model.ErrDataInsufficient):
		return metrics.OutcomeDataInsufficient
	case errors.Is(err, seeds.ErrSeedUnavailable):
		return metrics.OutcomeSeedUnavailable
	default:
		return metrics.OutcomeError
	}
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
