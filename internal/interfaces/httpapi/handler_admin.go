package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GetAdminRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAdminRoster")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) ReloadRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReloadRoster")
	defer span.End()

	if err := h.engine.Reload(ctx); err != nil {
		h.logger.WarnContext(ctx, "manual reload failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenameTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	tagTeam(span, teamID, -1)
	var req renameTeamRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.engine.RenameTeam(ctx, teamID, req.Title); err != nil {
		h.logger.WarnContext(ctx, "rename team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	tagTeam(span, teamID, -1)
	if err := h.engine.DeleteTeam(ctx, teamID); err != nil {
		h.logger.ErrorContext(ctx, "delete team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) SetCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetCaptain")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	tagTeam(span, teamID, -1)
	var req setCaptainRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.engine.SetCaptain(ctx, teamID, *req.Slot); err != nil {
		h.logger.WarnContext(ctx, "set captain failed", "team_id", teamID, "slot", *req.Slot, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) ClearCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCaptain")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	tagTeam(span, teamID, -1)
	if err := h.engine.ClearCaptain(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "clear captain failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateScore")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	slot, err := pathSlot(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tagTeam(span, teamID, slot)
	var req updateScoreRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	raw, err := scoreText(req.Score)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.engine.UpdateScore(ctx, teamID, slot, raw); err != nil {
		h.logger.WarnContext(ctx, "update score failed", "team_id", teamID, "slot", slot, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayer")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	slot, err := pathSlot(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tagTeam(span, teamID, slot)
	var req addPlayerRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	player, err := h.engine.AddPlayer(ctx, teamID, slot, req.Name, req.AvatarURL)
	if err != nil {
		h.logger.WarnContext(ctx, "add player failed", "team_id", teamID, "slot", slot, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(player, ""))
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayer")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	slot, err := pathSlot(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tagTeam(span, teamID, slot)

	if err := h.engine.RemovePlayer(ctx, teamID, slot); err != nil {
		h.logger.WarnContext(ctx, "remove player failed", "team_id", teamID, "slot", slot, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) MovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MovePlayer")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	from, err := pathSlot(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tagTeam(span, teamID, from)
	var req movePlayerRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.engine.MovePlayer(ctx, teamID, from, *req.To); err != nil {
		h.logger.WarnContext(ctx, "move player failed", "team_id", teamID, "from", from, "to", *req.To, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) ApproveDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveDraft")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	tagTeam(span, teamID, -1)
	if err := h.engine.ApproveDraft(ctx, teamID); err != nil {
		h.logger.ErrorContext(ctx, "approve draft failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}

func (h *Handler) DenyDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DenyDraft")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	tagTeam(span, teamID, -1)
	if err := h.engine.DenyDraft(ctx, teamID); err != nil {
		h.logger.ErrorContext(ctx, "deny draft failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, adminRosterToDTO(h.engine.Snapshot()))
}
