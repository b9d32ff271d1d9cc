package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/types"
	"github.com/okian/playlab/pkg/logger"
)

// IdempotencyHeader carries the client key that makes job submission safe
// to retry.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 256

// JobDependencies defines the async job operations.
type JobDependencies interface {
	SubmitJob(ctx context.Context, key string, job model.Job) (id string, dup bool, err error)
	Job(ctx context.Context, id string) (types.Job, error)
}

// JobsHandler handles job submission and polling.
type JobsHandler struct {
	deps      JobDependencies
	maxTracks int
	logger    logger.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies, maxTracks int, log logger.Logger) *JobsHandler {
	return &JobsHandler{deps: deps, maxTracks: maxTracks, logger: log}
}

// jobRequest mirrors the OpenAPI schema for POST /v1/jobs.
type jobRequest struct {
	Kind    model.JobKind       `json:"kind" validate:"required,oneof=analyze battle"`
	Analyze *model.AnalyzeInput `json:"analyze" validate:"required_if=Kind analyze"`
	Battle  *model.BattleInput  `json:"battle" validate:"required_if=Kind battle"`
}

type submitResponse struct {
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

type jobResponse struct {
	JobID       string          `json:"job_id"`
	Kind        string          `json:"kind"`
	Status      types.JobStatus `json:"status"`
	Result      any             `json:"result,omitempty"`
	Error       *errorResponse  `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}

// HandleSubmit handles POST /v1/jobs requests. A new job is acknowledged
// with 202; a repeated Idempotency-Key returns the original job with 200.
func (h *JobsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_job"
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if len(key) > maxIdempotencyKeyLen {
		writeError(w, r, h.logger, NewKind(op, ErrBadRequest))
		return
	}

	var req jobRequest
	if err := decodeBody(w, r, op, bodyLimit(h.maxTracks, 2), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	job := model.Job{Kind: req.Kind}
	switch req.Kind {
	case model.JobAnalyze:
		if err := checkTracks(op, "analyze.tracks", len(req.Analyze.Tracks), h.maxTracks); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		job.Analyze = req.Analyze
	case model.JobBattle:
		if err := checkBattle(op, *req.Battle, h.maxTracks); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		job.Battle = req.Battle
	}

	id, dup, err := h.deps.SubmitJob(r.Context(), key, job)
	if err != nil {
		writeError(w, r, h.logger, Wrap(op, err))
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, submitResponse{JobID: id, Duplicate: true})
		return
	}
	w.Header().Set("Location", "/v1/jobs/"+id)
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: id})
}

// HandleGet handles GET /v1/jobs/{id} requests.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	job, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, Wrap(op, err))
		return
	}

	resp := jobResponse{
		JobID:       job.ID,
		Kind:        job.Kind,
		Status:      job.Status,
		Result:      job.Result,
		SubmittedAt: job.SubmittedAt,
	}
	if !job.FinishedAt.IsZero() {
		finished := job.FinishedAt
		resp.FinishedAt = &finished
	}
	if job.Err != nil {
		_, body := errorBody(job.Err)
		resp.Error = &body
	}
	writeJSON(w, http.StatusOK, resp)
}
