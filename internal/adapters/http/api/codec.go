package api

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/okian/playlab/internal/domain/seeds"
	"github.com/okian/playlab/pkg/logger"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Signal  string   `json:"signal,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// decodeBody reads at most limit bytes of JSON into v and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, limit int64, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return WrapKind(op, ErrPayloadTooLarge, err)
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if err := getValidator().Struct(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(err error) (int, errorResponse) {
	status, code := classify(err)
	resp := errorResponse{Code: code, Message: err.Error()}

	var unavailable *seeds.UnavailableError
	if errors.As(err, &unavailable) {
		resp.Signal = unavailable.Signal
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fe := range invalid {
			resp.Fields = append(resp.Fields, fe.Namespace())
		}
	}
	if status >= http.StatusInternalServerError {
		resp.Message = http.StatusText(status)
	}
	return status, resp
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, resp := errorBody(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeJSON(w, status, resp)
}
