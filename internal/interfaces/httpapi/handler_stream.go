package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/party-leaderboard/internal/usecase"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxClientSize = 512
	sseHeartbeat  = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type streamMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (h *Handler) LeaderboardWS(w http.ResponseWriter, r *http.Request) {
	h.serveWS(w, r, false)
}

func (h *Handler) AdminRosterWS(w http.ResponseWriter, r *http.Request) {
	h.serveWS(w, r, true)
}

func streamPayload(snap usecase.Snapshot, admin bool) streamMessage {
	if admin {
		return streamMessage{Type: "roster", Data: adminRosterToDTO(snap)}
	}
	return streamMessage{Type: "leaderboard", Data: leaderboardToDTO(snap)}
}

// serveWS pushes every published snapshot to the client. Clients only send
// pongs; anything else they write is read and discarded.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request, admin bool) {
	ctx := r.Context()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := h.engine.Subscribe(h.streamBuffer)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxClientSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-snapshots:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "stream closed"))
				return
			}
			data, err := sonic.Marshal(streamPayload(snap, admin))
			if err != nil {
				h.logger.ErrorContext(ctx, "encode snapshot failed", "error", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// LeaderboardEvents streams public snapshots as server-sent events.
func (h *Handler) LeaderboardEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	snapshots, cancel := h.engine.Subscribe(h.streamBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "event stream not supported", "error", err)
		return
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			data, err := sonic.Marshal(leaderboardToDTO(snap))
			if err != nil {
				h.logger.ErrorContext(ctx, "encode snapshot failed", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: leaderboard\ndata: %s\n\n", snap.Version, data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
