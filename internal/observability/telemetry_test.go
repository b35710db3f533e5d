package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/party-leaderboard/internal/config"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func TestStart_AllDisabled(t *testing.T) {
	tel, err := Start(config.Config{ServiceName: "party-leaderboard", AppEnv: config.EnvDev}, logging.NewNop())
	require.NoError(t, err)
	require.Empty(t, tel.Running())
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestStart_UptraceWithoutDSNIsSkipped(t *testing.T) {
	tel, err := Start(config.Config{UptraceEnabled: true, ServiceName: "party-leaderboard"}, nil)
	require.NoError(t, err)
	require.Empty(t, tel.Running())
}

func TestStart_PprofListens(t *testing.T) {
	tel, err := Start(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, []string{"pprof"}, tel.Running())
	require.NoError(t, tel.Shutdown(context.Background()))
	require.Empty(t, tel.Running())
}

func TestStart_PprofBadAddrFails(t *testing.T) {
	_, err := Start(config.Config{PprofEnabled: true, PprofAddr: "not-an-addr"}, logging.NewNop())
	require.Error(t, err)
}

func TestPprofMux_ServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	pprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestShutdown_NilTelemetry(t *testing.T) {
	var tel *Telemetry
	require.NoError(t, tel.Shutdown(context.Background()))
}
