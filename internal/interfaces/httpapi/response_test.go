package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/footyarchive/gamelog-api/internal/usecase"
)

func TestWriteError_InvalidInput(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, 2007, fmt.Errorf("%w: season must be an integer", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got, _ := body["error"].(string); got == "" {
		t.Fatalf("expected error message, got %v", body)
	}
}

func TestWriteError_NotFoundCarriesSeasonAndEmptyGames(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, 2007, fmt.Errorf("%w: no games", usecase.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got, _ := body["season"].(float64); int(got) != 2007 {
		t.Fatalf("expected season=2007, got %v", body["season"])
	}
	games, ok := body["games"].([]any)
	if !ok {
		t.Fatalf("expected games array, got %v", body["games"])
	}
	if len(games) != 0 {
		t.Fatalf("expected empty games array, got %d items", len(games))
	}
}

func TestWriteError_UpstreamUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, 2007, fmt.Errorf("%w: GET /index failed", usecase.ErrUpstreamUnavailable))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got, _ := body["error"].(string); got != "upstream archive unavailable" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
	if got, _ := body["details"].(string); got == "" {
		t.Fatalf("expected details, got %v", body)
	}
}

func TestWriteError_CircuitOpen(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, 2007, fmt.Errorf("%w: circuit breaker rejected request", usecase.ErrDependencyUnavailable))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, 2007, fmt.Errorf("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got, _ := body["error"].(string); got != "internal server error" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}
