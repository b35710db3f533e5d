package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestSkipMirroredLog(t *testing.T) {
	require.True(t, skipMirroredLog("http request", []any{"method", "GET", "path", "/healthz"}))
	require.True(t, skipMirroredLog("http request", []any{"path", "/v1/leaderboard/events"}))
	require.False(t, skipMirroredLog("http request", []any{"path", "/v1/admin/reload"}))
	require.False(t, skipMirroredLog("draft approved", []any{"path", "/healthz"}))
}

func TestOtelAttributes(t *testing.T) {
	attrs := otelAttributes([]any{"team_id", "team_1", "slot", 4, 7, "x", "dangling"})
	require.Len(t, attrs, 4)
	require.Equal(t, "team_id", attrs[0].Key)
	require.Equal(t, "team_1", attrs[0].Value.AsString())
	require.Equal(t, int64(4), attrs[1].Value.AsInt64())
	require.Equal(t, "arg_2", attrs[2].Key)
	require.Equal(t, "dangling", attrs[3].Key)
	require.Equal(t, otellog.KindEmpty, attrs[3].Value.Kind())
}

func TestOtelValue(t *testing.T) {
	require.Equal(t, "boom", otelValue(errors.New("boom"), 0).AsString())
	require.Equal(t, "1.5s", otelValue(1500*time.Millisecond, 0).AsString())
	require.Equal(t, otellog.KindEmpty, otelValue((*int)(nil), 0).Kind())

	scores := otelValue(map[string]any{"alex": 3.5, "bea": []int{1, 2}}, 0)
	require.Equal(t, otellog.KindMap, scores.Kind())
	items := scores.AsMap()
	require.Len(t, items, 2)
	require.Equal(t, "alex", items[0].Key)
	require.Equal(t, otellog.KindSlice, items[1].Value.Kind())
}

func TestOtelSeverity(t *testing.T) {
	require.Equal(t, otellog.SeverityDebug, otelSeverity(logging.LevelDebug))
	require.Equal(t, otellog.SeverityWarn, otelSeverity(logging.LevelWarn))
	require.Equal(t, otellog.SeverityError, otelSeverity(logging.LevelError))
}

func TestLogMirror_NoProviderIsSafe(t *testing.T) {
	mirror := newLogMirror("test")
	mirror(context.Background(), logging.LevelInfo, "draft approved", "team_id", "team_1")
	mirror(context.Background(), logging.LevelWarn, "http request", "path", "/healthz")
}
