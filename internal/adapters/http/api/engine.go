package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/playlab/internal/domain/analysis"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/seeds"
	"github.com/okian/playlab/pkg/logger"
)

// EngineDependencies defines the synchronous engine calls.
type EngineDependencies interface {
	Analyze(ctx context.Context, in model.AnalyzeInput) (analysis.Result, error)
	Battle(ctx context.Context, in model.BattleInput) (analysis.BattleResult, error)
	SelectSeeds(ctx context.Context, strategy string, sig seeds.Signal) (seeds.Spec, error)
}

// EngineHandler serves the analyze, battle and seeds endpoints.
type EngineHandler struct {
	deps      EngineDependencies
	maxTracks int
	logger    logger.Logger
}

// NewEngineHandler creates a new engine handler.
func NewEngineHandler(deps EngineDependencies, maxTracks int, log logger.Logger) *EngineHandler {
	return &EngineHandler{deps: deps, maxTracks: maxTracks, logger: log}
}

// seedsRequest mirrors the OpenAPI schema for POST /v1/seeds.
type seedsRequest struct {
	Strategy string       `json:"strategy" validate:"required"`
	Signal   seeds.Signal `json:"signal"`
}

// HandleAnalyze handles POST /v1/analyze requests.
func (h *EngineHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	var in model.AnalyzeInput
	if err := decodeBody(w, r, op, bodyLimit(h.maxTracks, 1), &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := checkTracks(op, "tracks", len(in.Tracks), h.maxTracks); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.deps.Analyze(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleBattle handles POST /v1/battle requests.
func (h *EngineHandler) HandleBattle(w http.ResponseWriter, r *http.Request) {
	const op = "api.battle"
	var in model.BattleInput
	if err := decodeBody(w, r, op, bodyLimit(h.maxTracks, 2), &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := checkBattle(op, in, h.maxTracks); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.deps.Battle(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSeeds handles POST /v1/seeds requests.
func (h *EngineHandler) HandleSeeds(w http.ResponseWriter, r *http.Request) {
	const op = "api.seeds"
	var req seedsRequest
	if err := decodeBody(w, r, op, bodyLimit(h.maxTracks, 1), &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := checkTracks(op, "signal.playlist_tracks", len(req.Signal.PlaylistTracks), h.maxTracks); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	spec, err := h.deps.SelectSeeds(r.Context(), req.Strategy, req.Signal)
	if err != nil {
		writeError(w, r, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func bodyLimit(maxTracks, playlists int) int64 {
	return int64(maxTracks)*int64(playlists)*bytesPerTrack + bodySlack
}

func checkTracks(op, field string, n, maxTracks int) error {
	if n > maxTracks {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("%s: %d tracks exceeds the limit of %d", field, n, maxTracks))
	}
	return nil
}

func checkBattle(op string, in model.BattleInput, maxTracks int) error {
	if err := checkTracks(op, "playlist1.tracks", len(in.Playlist1.Tracks), maxTracks); err != nil {
		return err
	}
	return checkTracks(op, "playlist2.tracks", len(in.Playlist2.Tracks), maxTracks)
}
