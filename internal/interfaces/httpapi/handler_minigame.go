package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/party-leaderboard/internal/domain/minigame"
)

func (h *Handler) CreateMinigameSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMinigameSession")
	defer span.End()

	var req createMinigameRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.minigames.Create(ctx, req.Width, req.Height)
	if err != nil {
		h.logger.WarnContext(ctx, "create minigame session failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, minigameToDTO(session))
}

func (h *Handler) GetMinigameSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMinigameSession")
	defer span.End()

	session, err := h.minigames.Get(ctx, strings.TrimSpace(r.PathValue("sessionID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, minigameToDTO(session))
}

func (h *Handler) StepMinigameSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StepMinigameSession")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req stepMinigameRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	frames := req.Frames
	if frames == 0 {
		frames = 1
	}

	session, err := h.minigames.Step(ctx, sessionID, minigame.Input{
		Left:  req.Left,
		Right: req.Right,
		Jump:  req.Jump,
	}, frames)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, minigameToDTO(session))
}

func (h *Handler) ResetMinigameSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetMinigameSession")
	defer span.End()

	session, err := h.minigames.Reset(ctx, strings.TrimSpace(r.PathValue("sessionID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, minigameToDTO(session))
}

func (h *Handler) EndMinigameSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndMinigameSession")
	defer span.End()

	session, err := h.minigames.End(ctx, strings.TrimSpace(r.PathValue("sessionID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, minigameToDTO(session))
}
