package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/config"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

type capturedLogs struct {
	mu    sync.Mutex
	lines []string
	auth  []string
}

func (c *capturedLogs) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.lines = append(c.lines, string(body))
		c.auth = append(c.auth, r.Header.Get("Authorization"))
		c.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}
}

func (c *capturedLogs) snapshot() ([]string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...), append([]string(nil), c.auth...)
}

func TestBetterStackEndpoint(t *testing.T) {
	require.Equal(t, "", betterStackEndpoint("  "))
	require.Equal(t, "https://in.logs.example.com", betterStackEndpoint("in.logs.example.com"))
	require.Equal(t, "http://localhost:9000", betterStackEndpoint("http://localhost:9000"))
}

func TestStart_ShipsLogsAtMinLevel(t *testing.T) {
	captured := &capturedLogs{}
	srv := httptest.NewServer(captured.handler())
	t.Cleanup(srv.Close)

	tel, err := Start(config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: srv.URL,
		BetterStackToken:    "tok",
		BetterStackTimeout:  time.Second,
		BetterStackMinLevel: logging.LevelWarn,
	}, logging.NewJSONWriter(io.Discard, logging.LevelDebug))
	require.NoError(t, err)
	require.Equal(t, []string{"betterstack"}, tel.Running())

	logger := tel.Logger().With("service", "party-leaderboard")
	logger.Info("draft approved", "team_id", "team_1")
	logger.Warn("store commit failed, reloading", "op", "move player")

	require.NoError(t, tel.Shutdown(context.Background()))

	lines, auth := captured.snapshot()
	require.Len(t, lines, 1)
	require.True(t, strings.Contains(lines[0], `"store commit failed, reloading"`), lines[0])
	require.True(t, strings.Contains(lines[0], `"service":"party-leaderboard"`), lines[0])
	require.Equal(t, "Bearer tok", auth[0])
}

func TestLogSink_DropsAfterClose(t *testing.T) {
	captured := &capturedLogs{}
	srv := httptest.NewServer(captured.handler())
	t.Cleanup(srv.Close)

	sink := newLogSink(srv.URL, "", time.Second)
	_, err := sink.Write([]byte(`{"msg":"one"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, sink.Close(context.Background()))

	n, err := sink.Write([]byte(`{"msg":"late"}`))
	require.NoError(t, err)
	require.Equal(t, len(`{"msg":"late"}`), n)
	require.NoError(t, sink.Close(context.Background()))

	lines, _ := captured.snapshot()
	require.Equal(t, []string{`{"msg":"one"}`}, lines)
}
