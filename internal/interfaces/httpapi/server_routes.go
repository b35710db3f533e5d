package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET "+openAPIPath, handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/leaderboard/ws", handler.LeaderboardWS)
	mux.HandleFunc("GET /v1/leaderboard/events", handler.LeaderboardEvents)
	mux.HandleFunc("GET /v1/leaderboard/qr", handler.LeaderboardQR)
	mux.HandleFunc("GET /v1/players/available", handler.ListAvailablePlayers)
	mux.HandleFunc("POST /v1/drafts", handler.SubmitDraft)
}

func registerMinigameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/minigame/sessions", handler.CreateMinigameSession)
	mux.HandleFunc("GET /v1/minigame/sessions/{sessionID}", handler.GetMinigameSession)
	mux.HandleFunc("DELETE /v1/minigame/sessions/{sessionID}", handler.EndMinigameSession)
	mux.HandleFunc("POST /v1/minigame/sessions/{sessionID}/step", handler.StepMinigameSession)
	mux.HandleFunc("POST /v1/minigame/sessions/{sessionID}/reset", handler.ResetMinigameSession)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminKey string) {
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, RequireAdminKey(adminKey, fn))
	}

	admin("GET /v1/admin/roster", handler.GetAdminRoster)
	admin("GET /v1/admin/roster/ws", handler.AdminRosterWS)
	admin("POST /v1/admin/reload", handler.ReloadRoster)

	admin("PUT /v1/admin/teams/{teamID}/title", handler.RenameTeam)
	admin("DELETE /v1/admin/teams/{teamID}", handler.DeleteTeam)
	admin("PUT /v1/admin/teams/{teamID}/captain", handler.SetCaptain)
	admin("DELETE /v1/admin/teams/{teamID}/captain", handler.ClearCaptain)

	admin("PUT /v1/admin/teams/{teamID}/slots/{slot}/score", handler.UpdateScore)
	admin("POST /v1/admin/teams/{teamID}/slots/{slot}/player", handler.AddPlayer)
	admin("DELETE /v1/admin/teams/{teamID}/slots/{slot}/player", handler.RemovePlayer)
	admin("POST /v1/admin/teams/{teamID}/slots/{slot}/move", handler.MovePlayer)

	admin("POST /v1/admin/drafts/{teamID}/approve", handler.ApproveDraft)
	admin("DELETE /v1/admin/drafts/{teamID}", handler.DenyDraft)
}
