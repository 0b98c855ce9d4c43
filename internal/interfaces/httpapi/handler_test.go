package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
	"github.com/footyarchive/gamelog-api/internal/platform/cache"
	"github.com/footyarchive/gamelog-api/internal/usecase"
)

const testPageURL = "https://archive.test/players/R/Matthew_Richardson.html"

type stubArchive struct {
	pages map[string]usecase.ArchiveProfile
}

func (s *stubArchive) PlayerIndex(context.Context) ([]gamelog.ProfileEntry, error) {
	entries := make([]gamelog.ProfileEntry, 0, len(s.pages))
	for url, page := range s.pages {
		entries = append(entries, gamelog.ProfileEntry{Name: titleName(page.Title), URL: url})
	}
	return entries, nil
}

func (s *stubArchive) FetchProfile(_ context.Context, pageURL string, _ int) (usecase.ArchiveProfile, error) {
	page, ok := s.pages[pageURL]
	if !ok {
		return usecase.ArchiveProfile{}, fmt.Errorf("%w: %s", usecase.ErrNotProfilePage, pageURL)
	}
	return page, nil
}

func (s *stubArchive) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return "https://archive.test/" + strings.TrimLeft(path, "/")
}

func titleName(title string) string {
	head, _, _ := strings.Cut(title, " - ")
	return strings.TrimSpace(head)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rows := []gamelog.Row{
		{Season: 2007, GameNumber: 1, Opponent: "Carlton", Round: "R1", Result: "W 28", Kicks: 12, Goals: 3, Disposals: 18},
		{Season: 2007, GameNumber: 2, Opponent: "Essendon", Round: "R2", Result: "L 4", Kicks: 9, Goals: 1, Disposals: 15},
		{Season: 2006, GameNumber: 1, Opponent: "Geelong", Round: "R1", Result: "W 10", Kicks: 15, Goals: 2, Disposals: 22},
	}
	archive := &stubArchive{
		pages: map[string]usecase.ArchiveProfile{
			testPageURL: {URL: testPageURL, Title: "Matthew Richardson - AFL Tables", Rows: rows},
		},
	}

	tiered, err := cache.NewTiered(cache.NewStore(0), nil, nil)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	t.Cleanup(tiered.Close)

	svc := usecase.NewGameLogService(archive, tiered, nil, usecase.GameLogServiceConfig{}, nil)
	handler := NewHandler(svc, nil, nil)
	return NewRouter(handler, nil, []string{"*"})
}

func TestGetPlayerGameLogs_OK(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/player-game-logs?season=2007&player_name=Matthew+Richardson", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Season     int    `json:"season"`
		Source     string `json:"source"`
		PlayerName string `json:"player_name"`
		PlayerPage string `json:"player_page"`
		Games      []struct {
			Season     int    `json:"season"`
			GameNumber int    `json:"game_number"`
			Opponent   string `json:"opponent"`
			Kicks      int    `json:"kicks"`
		} `json:"games"`
		GameCount int `json:"game_count"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if body.Season != 2007 {
		t.Fatalf("season = %d", body.Season)
	}
	if body.Source != usecase.SourceName {
		t.Fatalf("source = %q", body.Source)
	}
	if body.PlayerName != "Matthew Richardson" {
		t.Fatalf("player_name = %q", body.PlayerName)
	}
	if body.PlayerPage != testPageURL {
		t.Fatalf("player_page = %q", body.PlayerPage)
	}
	if body.GameCount != 2 || len(body.Games) != 2 {
		t.Fatalf("game_count = %d, games = %d", body.GameCount, len(body.Games))
	}
	if body.Games[0].Opponent != "Carlton" || body.Games[0].Kicks != 12 {
		t.Fatalf("unexpected first game: %+v", body.Games[0])
	}
}

func TestGetPlayerGameLogs_BadSeason(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/v1/player-game-logs?season=abc&player_name=Matthew+Richardson",
		"/v1/player-game-logs?season=1800&player_name=Matthew+Richardson",
		"/v1/player-game-logs?season=2007",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestGetPlayerGameLogs_UnknownPlayer(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/player-game-logs?season=2007&player_name=Zebulon+Quirk", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body struct {
		Error  string `json:"error"`
		Season int    `json:"season"`
		Games  []any  `json:"games"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Season != 2007 || body.Games == nil || len(body.Games) != 0 {
		t.Fatalf("unexpected 404 body: %+v", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", target, rec.Code)
		}
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	handler := NewHandler(nil, func(context.Context) error {
		return fmt.Errorf("shared cache unreachable")
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	handler.Readyz(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
