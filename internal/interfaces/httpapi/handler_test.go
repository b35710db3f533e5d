package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/infrastructure/teamstore/memory"
	"github.com/riskibarqy/party-leaderboard/internal/platform/cache"
	"github.com/riskibarqy/party-leaderboard/internal/platform/id"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/party-leaderboard/internal/usecase"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "let-me-in"

type peopleList []roster.Person

func (p peopleList) People() []roster.Person { return append([]roster.Person(nil), p...) }

func newTestRouter(t *testing.T) (http.Handler, *usecase.SyncEngine) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore(id.NewSequenceGenerator("mem"))
	require.NoError(t, memory.Seed(ctx, store, memory.DemoTeams()))

	engine := usecase.NewSyncEngine(store, nil, peopleList{{Name: "Zoe"}, {Name: "Alex"}}, logging.NewNop(), usecase.SyncEngineConfig{})
	t.Cleanup(engine.Close)
	require.NoError(t, engine.Start(ctx))

	minigames := usecase.NewMinigameService(cache.NewStore(time.Minute), id.NewSequenceGenerator("game"), logging.NewNop())
	handler := NewHandler(engine, minigames, logging.NewNop(), HandlerOptions{PublicBaseURL: "https://party.example.com/"})

	return NewRouter(handler, logging.NewNop(), RouterOptions{AdminKey: testAdminKey}), engine
}

func doJSON(t *testing.T, router http.Handler, method, target, body string, admin bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(adminKeyHeader, testAdminKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func approvedStoreID(t *testing.T, engine *usecase.SyncEngine, title string) string {
	t.Helper()
	for _, team := range engine.Snapshot().Approved {
		if team.Title == title {
			return team.StoreID
		}
	}
	t.Fatalf("approved team %q not found", title)
	return ""
}

func TestHandler_GetLeaderboard(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/v1/leaderboard", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	standings := data["standings"].([]any)
	require.Len(t, standings, 2)

	leader := standings[0].(map[string]any)
	require.Equal(t, float64(1), leader["position"])
	require.Equal(t, 5.5, leader["total"])
	require.Equal(t, "Beer Pong Bandits", leader["team"].(map[string]any)["title"])
}

func TestHandler_AdminRoutesRequireKey(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/v1/admin/roster", "", false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := doJSON(t, router, http.MethodGet, "/v1/admin/roster", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	require.Len(t, data["approved"].([]any), 2)
	require.Len(t, data["drafts"].([]any), 1)
}

func TestHandler_UpdateScore(t *testing.T) {
	router, engine := newTestRouter(t)
	storeID := approvedStoreID(t, engine, "Flip Cup Forever")
	target := "/v1/admin/teams/" + storeID + "/slots/0/score"

	rec, _ := doJSON(t, router, http.MethodPut, target, `{"score":4.5}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPut, target, `{"score":"abc"}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPut, target, `{}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	for _, team := range engine.Snapshot().Approved {
		if team.StoreID == storeID {
			require.Equal(t, 4.5, team.Players[0].Score)
		}
	}
}

func TestHandler_AddMoveRemovePlayer(t *testing.T) {
	router, engine := newTestRouter(t)
	storeID := approvedStoreID(t, engine, "Flip Cup Forever")
	base := "/v1/admin/teams/" + storeID + "/slots/"

	rec, body := doJSON(t, router, http.MethodPost, base+"1/player", `{"name":"Zoe"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Zoe", body["data"].(map[string]any)["name"])

	rec, _ = doJSON(t, router, http.MethodPost, base+"1/player", `{"name":"Alex"}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, base+"1/move", `{"to":4}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodDelete, base+"4/player", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodDelete, base+"4/player", "", true)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = doJSON(t, router, http.MethodDelete, base+"x/player", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UnknownTeam(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodDelete, "/v1/admin/teams/nope", "", true)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_SubmitAndApproveDraft(t *testing.T) {
	router, engine := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/v1/drafts",
		`{"title":"Night Owls","submitter_name":"Zoe","players":[{"name":"Zoe"},{"name":""},{"name":"Ola"}],"captain_slot":0}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	storeID := body["data"].(map[string]any)["store_id"].(string)
	require.NotEmpty(t, storeID)
	require.Len(t, engine.Snapshot().Drafts, 2)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/admin/drafts/"+storeID+"/approve", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, engine.Snapshot().Approved, 3)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/drafts", `{"title":"","submitter_name":"Zoe","players":[]}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/drafts",
		`{"title":"No Captain","submitter_name":"Quinn","players":[{"name":"Quinn"}]}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, engine.Snapshot().Drafts, 1)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/drafts", `{"title":"x","unknown":true}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListAvailablePlayers(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/v1/players/available?q=zo", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, "Zoe", items[0].(map[string]any)["display_name"])
}

func TestHandler_LeaderboardQR(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/v1/leaderboard/qr", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHandler_MinigameLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/v1/minigame/sessions", `{"width":800,"height":600}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := body["data"].(map[string]any)["id"].(string)
	require.Equal(t, "game-1", sessionID)

	rec, body = doJSON(t, router, http.MethodPost, "/v1/minigame/sessions/"+sessionID+"/step", `{"right":true,"frames":3}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(3), body["data"].(map[string]any)["frames"])

	rec, body = doJSON(t, router, http.MethodPost, "/v1/minigame/sessions/"+sessionID+"/reset", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(0), body["data"].(map[string]any)["frames"])

	rec, _ = doJSON(t, router, http.MethodDelete, "/v1/minigame/sessions/"+sessionID, "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/v1/minigame/sessions/"+sessionID, "", false)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/minigame/sessions", `{"width":0,"height":600}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LeaderboardWSSendsSnapshot(t *testing.T) {
	router, _ := newTestRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/leaderboard/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(payload, &msg))
	require.Equal(t, "leaderboard", msg.Type)
	require.Len(t, msg.Data["standings"].([]any), 2)
}

func TestHandler_DocsRoutes(t *testing.T) {
	router := NewRouter(NewHandler(nil, nil, logging.NewNop(), HandlerOptions{}), logging.NewNop(), RouterOptions{SwaggerEnabled: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `url: "/openapi.yaml"`)
}
