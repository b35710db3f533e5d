package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/party-leaderboard/internal/usecase"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(h.engine.Snapshot()))
}

// LeaderboardQR renders a PNG QR code pointing at the public leaderboard.
func (h *Handler) LeaderboardQR(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaderboardQR")
	defer span.End()

	url := h.publicBaseURL
	if url == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
			scheme = proto
		}
		url = scheme + "://" + r.Host + "/"
	}

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "qr generation failed", "url", url, "error", err)
		writeInternalError(ctx, w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(png)
}

func (h *Handler) ListAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailablePlayers")
	defer span.End()

	people := h.engine.AvailablePlayers(r.URL.Query().Get("q"))
	items := make([]personDTO, 0, len(people))
	for _, p := range people {
		items = append(items, personToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitDraft")
	defer span.End()

	var req submitDraftRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	sub := usecase.DraftSubmission{
		Title:         req.Title,
		SubmitterName: req.SubmitterName,
		Players:       make([]usecase.DraftSlot, 0, len(req.Players)),
		CaptainSlot:   *req.CaptainSlot,
	}
	for _, p := range req.Players {
		sub.Players = append(sub.Players, usecase.DraftSlot{Name: p.Name, AvatarURL: p.AvatarURL})
	}

	storeID, err := h.engine.SubmitDraft(ctx, sub)
	if err != nil {
		h.logger.WarnContext(ctx, "submit draft failed", "title", req.Title, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, submitDraftResponse{StoreID: storeID})
}
