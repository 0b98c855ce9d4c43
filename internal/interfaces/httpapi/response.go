package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/footyarchive/gamelog-api/internal/usecase"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type notFoundBody struct {
	Error  string    `json:"error"`
	Season int       `json:"season"`
	Games  []gameDTO `json:"games"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

// writeError maps usecase sentinels onto the response contract. Not-found
// responses carry the requested season and an empty games list so clients
// can treat them like an empty result.
func writeError(ctx context.Context, w http.ResponseWriter, season int, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		writeJSON(ctx, w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotFound):
		writeJSON(ctx, w, http.StatusNotFound, notFoundBody{
			Error:  err.Error(),
			Season: season,
			Games:  []gameDTO{},
		})
	case errors.Is(err, usecase.ErrUpstreamUnavailable):
		writeJSON(ctx, w, http.StatusBadGateway, errorBody{
			Error:   "upstream archive unavailable",
			Details: err.Error(),
		})
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		writeJSON(ctx, w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		writeInternalError(ctx, w)
	}
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}
