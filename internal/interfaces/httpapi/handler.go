package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
	"github.com/footyarchive/gamelog-api/internal/domain/identity"
	"github.com/footyarchive/gamelog-api/internal/platform/cache"
	"github.com/footyarchive/gamelog-api/internal/platform/logging"
	"github.com/footyarchive/gamelog-api/internal/usecase"
)

type Handler struct {
	gamelogs  *usecase.GameLogService
	ready     func(ctx context.Context) error
	logger    *logging.Logger
	validator *validator.Validate
}

// NewHandler wires the HTTP surface. ready is consulted by /readyz; nil
// means always ready.
func NewHandler(gamelogs *usecase.GameLogService, ready func(ctx context.Context) error, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gamelogs:  gamelogs,
		ready:     ready,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	if h.ready != nil {
		if err := h.ready(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "error", err)
			writeJSON(ctx, w, http.StatusServiceUnavailable, errorBody{Error: "not ready", Details: err.Error()})
			return
		}
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

type gameLogRequest struct {
	Season     int    `validate:"required,gte=1897"`
	PlayerName string `validate:"required"`
}

func (h *Handler) GetPlayerGameLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerGameLogs")
	defer span.End()

	query := r.URL.Query()
	seasonRaw := strings.TrimSpace(query.Get("season"))
	playerName := strings.TrimSpace(query.Get("player_name"))

	season, err := strconv.Atoi(seasonRaw)
	if err != nil {
		writeError(ctx, w, 0, fmt.Errorf("%w: season must be an integer", usecase.ErrInvalidInput))
		return
	}

	req := gameLogRequest{Season: season, PlayerName: playerName}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, season, err)
		return
	}

	result, err := h.gamelogs.PlayerGameLogs(ctx, usecase.GameLogQuery{
		Season:     season,
		PlayerName: playerName,
		CacheKey: cache.RequestKey("gamelogs", query, map[string]string{
			"season":      strconv.Itoa(season),
			"player_name": identity.Normalize(playerName),
		}),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "player game log lookup failed",
			"season", season, "player_name", playerName, "error", err)
		writeError(ctx, w, season, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, gameLogResponseFromResult(ctx, result))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type gameLogResponseDTO struct {
	Season     int       `json:"season"`
	Source     string    `json:"source"`
	PlayerName string    `json:"player_name"`
	PlayerPage string    `json:"player_page"`
	Games      []gameDTO `json:"games"`
	GameCount  int       `json:"game_count"`
}

type gameDTO struct {
	Season     int    `json:"season"`
	GameNumber int    `json:"game_number"`
	Opponent   string `json:"opponent"`
	Round      string `json:"round"`
	Result     string `json:"result"`
	Guernsey   *int   `json:"guernsey,omitempty"`

	Kicks                  int `json:"kicks"`
	Marks                  int `json:"marks"`
	Handballs              int `json:"handballs"`
	Disposals              int `json:"disposals"`
	Goals                  int `json:"goals"`
	Behinds                int `json:"behinds"`
	HitOuts                int `json:"hit_outs"`
	Tackles                int `json:"tackles"`
	Rebound50s             int `json:"rebound_50s"`
	Inside50s              int `json:"inside_50s"`
	Clearances             int `json:"clearances"`
	Clangers               int `json:"clangers"`
	FreesFor               int `json:"frees_for"`
	FreesAgainst           int `json:"frees_against"`
	BrownlowVotes          int `json:"brownlow_votes"`
	ContestedPossessions   int `json:"contested_possessions"`
	UncontestedPossessions int `json:"uncontested_possessions"`
	ContestedMarks         int `json:"contested_marks"`
	MarksInside50          int `json:"marks_inside_50"`
	OnePercenters          int `json:"one_percenters"`
	Bounces                int `json:"bounces"`
	GoalAssists            int `json:"goal_assists"`

	PercentPlayed *float64 `json:"percent_played,omitempty"`
	MatchURL      string   `json:"match_url,omitempty"`
}

func gameLogResponseFromResult(ctx context.Context, result usecase.GameLogResult) gameLogResponseDTO {
	ctx, span := startSpan(ctx, "httpapi.gameLogResponseFromResult")
	defer span.End()

	games := make([]gameDTO, 0, len(result.Games))
	for _, row := range result.Games {
		games = append(games, gameToDTO(ctx, row))
	}

	return gameLogResponseDTO{
		Season:     result.Season,
		Source:     result.Source,
		PlayerName: result.PlayerName,
		PlayerPage: result.PlayerPage,
		Games:      games,
		GameCount:  len(games),
	}
}

func gameToDTO(ctx context.Context, row gamelog.Row) gameDTO {
	ctx, span := startSpan(ctx, "httpapi.gameToDTO")
	defer span.End()

	return gameDTO{
		Season:                 row.Season,
		GameNumber:             row.GameNumber,
		Opponent:               row.Opponent,
		Round:                  row.Round,
		Result:                 row.Result,
		Guernsey:               row.Guernsey,
		Kicks:                  row.Kicks,
		Marks:                  row.Marks,
		Handballs:              row.Handballs,
		Disposals:              row.Disposals,
		Goals:                  row.Goals,
		Behinds:                row.Behinds,
		HitOuts:                row.HitOuts,
		Tackles:                row.Tackles,
		Rebound50s:             row.Rebound50s,
		Inside50s:              row.Inside50s,
		Clearances:             row.Clearances,
		Clangers:               row.Clangers,
		FreesFor:               row.FreesFor,
		FreesAgainst:           row.FreesAgainst,
		BrownlowVotes:          row.BrownlowVotes,
		ContestedPossessions:   row.ContestedPossessions,
		UncontestedPossessions: row.UncontestedPossessions,
		ContestedMarks:         row.ContestedMarks,
		MarksInside50:          row.MarksInside50,
		OnePercenters:          row.OnePercenters,
		Bounces:                row.Bounces,
		GoalAssists:            row.GoalAssists,
		PercentPlayed:          row.PercentPlayed,
		MatchURL:               row.MatchURL,
	}
}
