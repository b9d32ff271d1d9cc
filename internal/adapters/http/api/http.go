// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/playlab/internal/domain/analysis"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/seeds"
	"github.com/okian/playlab/internal/domain/types"
	"github.com/okian/playlab/pkg/logger"
	"github.com/okian/playlab/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Analyze(ctx context.Context, in model.AnalyzeInput) (analysis.Result, error)
	Battle(ctx context.Context, in model.BattleInput) (analysis.BattleResult, error)
	SelectSeeds(ctx context.Context, strategy string, sig seeds.Signal) (seeds.Spec, error)

	// SubmitJob queues a job. dup is set when key was seen before.
	SubmitJob(ctx context.Context, key string, job model.Job) (id string, dup bool, err error)
	Job(ctx context.Context, id string) (types.Job, error)

	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, playlistID string) (Entry, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	engineHandler      *EngineHandler
	jobsHandler        *JobsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler

	cfg    serverConfig
	logger logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := logger.Get().Named("api")
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		engineHandler:      NewEngineHandler(deps, cfg.maxTracks, log),
		jobsHandler:        NewJobsHandler(deps, cfg.maxTracks, log),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.maxLeaderboardLimit, log),
		rankHandler:        NewRankHandler(deps, log),
		cfg:                cfg,
		logger:             log,
	}
}

// Register attaches all HTTP routes to mux. Compute endpoints are rate
// limited per client IP when a limit is configured.
func (s *Server) Register(mux *http.ServeMux) {
	limited := s.rateLimit()

	mux.Handle("POST /v1/analyze", limited(MetricsMiddleware(s.engineHandler.HandleAnalyze, "analyze")))
	mux.Handle("POST /v1/battle", limited(MetricsMiddleware(s.engineHandler.HandleBattle, "battle")))
	mux.Handle("POST /v1/seeds", limited(MetricsMiddleware(s.engineHandler.HandleSeeds, "seeds")))
	mux.Handle("POST /v1/jobs", limited(MetricsMiddleware(s.jobsHandler.HandleSubmit, "jobs_submit")))
	mux.HandleFunc("GET /v1/jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGet, "jobs_get"))
	mux.HandleFunc("GET /v1/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /v1/rank/{playlist_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

func (s *Server) rateLimit() func(http.Handler) http.Handler {
	if s.cfg.rateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.cfg.rateLimitRequests,
		s.cfg.rateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, s.logger, NewKind("api.rate_limit", ErrRateLimited))
		}),
	)
}
