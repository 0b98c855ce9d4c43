package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
}

func registerGameLogRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/player-game-logs", handler.GetPlayerGameLogs)
}
