package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/party-leaderboard/internal/usecase"
)

const defaultStreamBuffer = 16

type HandlerOptions struct {
	// PublicBaseURL is encoded into the share QR code. When empty the URL is
	// derived from the request.
	PublicBaseURL string
	StreamBuffer  int
}

type Handler struct {
	engine        *usecase.SyncEngine
	minigames     *usecase.MinigameService
	logger        *logging.Logger
	validator     *validator.Validate
	publicBaseURL string
	streamBuffer  int
}

func NewHandler(
	engine *usecase.SyncEngine,
	minigames *usecase.MinigameService,
	logger *logging.Logger,
	opts HandlerOptions,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	buffer := opts.StreamBuffer
	if buffer <= 0 {
		buffer = defaultStreamBuffer
	}

	return &Handler{
		engine:        engine,
		minigames:     minigames,
		logger:        logger.Named("httpapi"),
		validator:     validator.New(),
		publicBaseURL: strings.TrimSpace(opts.PublicBaseURL),
		streamBuffer:  buffer,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	snap := h.engine.Snapshot()
	writeSuccess(ctx, w, http.StatusOK, healthDTO{
		Status:        "ok",
		RosterLoaded:  snap.Loaded,
		RosterSource:  snap.Source,
		RosterVersion: snap.Version,
	})
}
