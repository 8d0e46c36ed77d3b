package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaquest/dialogue-engine/internal/services"
	"github.com/linguaquest/dialogue-engine/internal/session"
	"github.com/linguaquest/dialogue-engine/internal/storage"
)

const testTree = `{
  "id": "market-vendor-fruits",
  "startNodeId": "greeting",
  "nodes": [
    {
      "id": "greeting",
      "speaker": "npc",
      "text": "What would you like?",
      "responses": [
        {
          "id": "ask-apples",
          "text": "I want apples",
          "expectedSpeech": ["quiero manzanas"],
          "nextNodeId": "apples-response",
          "requiresType": "speak"
        },
        {
          "id": "just-looking",
          "text": "Just looking",
          "nextNodeId": "farewell",
          "requiresType": "choice"
        }
      ]
    },
    {
      "id": "apples-response",
      "speaker": "npc",
      "text": "Three apples for you!",
      "action": {"type": "give_item", "payload": {"itemId": "apple", "qty": 3}},
      "responses": [
        {
          "id": "say-thanks",
          "text": "Thanks",
          "expectedSpeech": ["gracias"],
          "nextNodeId": "farewell",
          "requiresType": "speak"
        }
      ]
    },
    {"id": "farewell", "speaker": "npc", "text": "See you!"}
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLibrary(t *testing.T) *storage.Library {
	t.Helper()
	dataDir := t.TempDir()
	treesDir := filepath.Join(dataDir, "trees")
	require.NoError(t, os.MkdirAll(treesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(treesDir, "market.json"), []byte(testTree), 0o644))

	lib, err := storage.LoadLibrary(dataDir, testLogger())
	require.NoError(t, err)
	return lib
}

type handlerFixture struct {
	sessions *SessionHandler
	trees    *TreeHandler
	health   *HealthHandler
	manager  *session.Manager
	progress *storage.RedisProgressStore
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger := testLogger()
	lib := testLibrary(t)

	mr := miniredis.RunT(t)
	progress := storage.NewRedisProgressStore(mr.Addr(), logger)
	t.Cleanup(func() { _ = progress.Close() })

	factory := services.NewFactory(lib, logger)
	manager := session.NewManager(logger)

	return &handlerFixture{
		sessions: NewSessionHandler(manager, factory, progress, services.TierFree, time.Minute, logger),
		trees:    NewTreeHandler(lib, logger),
		health:   NewHealthHandler(progress, lib, logger),
		manager:  manager,
		progress: progress,
		redis:    mr,
	}
}

func (f *handlerFixture) do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) open(t *testing.T, body interface{}) sessionResponse {
	t.Helper()
	rec := f.do(t, f.sessions, http.MethodPost, "/v1/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSessionHandler_Open(t *testing.T) {
	f := newFixture(t)

	resp := f.open(t, OpenSessionRequest{TreeID: "market-vendor-fruits", NPCID: "vendor-1"})
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.True(t, resp.Session.IsActive)
	require.NotNil(t, resp.Session.CurrentNode)
	assert.Equal(t, "greeting", resp.Session.CurrentNode.ID)
	assert.Equal(t, 1, f.manager.Count())
}

func TestSessionHandler_OpenErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.sessions, http.MethodPost, "/v1/sessions", OpenSessionRequest{TreeID: "no-such-tree"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, f.sessions, http.MethodPost, "/v1/sessions", OpenSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	f.sessions.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, f.sessions, http.MethodGet, "/v1/sessions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSessionHandler_GetAndDelete(t *testing.T) {
	f := newFixture(t)
	opened := f.open(t, OpenSessionRequest{TreeID: "market-vendor-fruits", NPCID: "vendor-1"})

	rec := f.do(t, f.sessions, http.MethodGet, "/v1/sessions/"+opened.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, opened.ID, resp.ID)
	assert.Equal(t, "market-vendor-fruits", resp.Session.TreeID)

	rec = f.do(t, f.sessions, http.MethodDelete, "/v1/sessions/"+opened.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.manager.Count())

	rec = f.do(t, f.sessions, http.MethodGet, "/v1/sessions/"+opened.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionHandler_UnknownAndInvalidIDs(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.sessions, http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, f.sessions, http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionHandler_Input(t *testing.T) {
	f := newFixture(t)
	profileID := uuid.New()
	opened := f.open(t, OpenSessionRequest{
		TreeID:    "market-vendor-fruits",
		NPCID:     "vendor-1",
		ProfileID: profileID.String(),
	})

	rec := f.do(t, f.sessions, http.MethodPost, "/v1/sessions/"+opened.ID.String()+"/input",
		inputRequest{Text: "quiero manzanas"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Feedback)
	assert.Equal(t, "apples-response", resp.Session.CurrentNode.ID)

	// the give_item action landed on the learner profile
	profile, err := f.progress.LoadProfile(context.Background(), profileID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 3, profile.Items["apple"])
}

func TestSessionHandler_InputOnClosedSession(t *testing.T) {
	f := newFixture(t)
	opened := f.open(t, OpenSessionRequest{TreeID: "market-vendor-fruits", NPCID: "vendor-1"})

	f.manager.Get(opened.ID).Close()

	rec := f.do(t, f.sessions, http.MethodPost, "/v1/sessions/"+opened.ID.String()+"/input",
		inputRequest{Text: "hola"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionHandler_Choice(t *testing.T) {
	f := newFixture(t)
	opened := f.open(t, OpenSessionRequest{TreeID: "market-vendor-fruits", NPCID: "vendor-1"})

	rec := f.do(t, f.sessions, http.MethodPost, "/v1/sessions/"+opened.ID.String()+"/choice",
		choiceRequest{ResponseID: "just-looking"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "farewell", resp.Session.CurrentNode.ID)
}

func TestSessionHandler_InvalidChoice(t *testing.T) {
	f := newFixture(t)
	opened := f.open(t, OpenSessionRequest{TreeID: "market-vendor-fruits", NPCID: "vendor-1"})

	rec := f.do(t, f.sessions, http.MethodPost, "/v1/sessions/"+opened.ID.String()+"/choice",
		choiceRequest{ResponseID: "ask-apples"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_UnknownCommand(t *testing.T) {
	f := newFixture(t)
	opened := f.open(t, OpenSessionRequest{TreeID: "market-vendor-fruits", NPCID: "vendor-1"})

	rec := f.do(t, f.sessions, http.MethodPost, "/v1/sessions/"+opened.ID.String()+"/shout",
		inputRequest{Text: "hola"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTreeHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.trees, http.MethodGet, "/v1/trees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list treeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"market-vendor-fruits"}, list.Trees)

	rec = f.do(t, f.trees, http.MethodGet, "/v1/trees/market-vendor-fruits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"startNodeId":"greeting"`)

	rec = f.do(t, f.trees, http.MethodGet, "/v1/trees/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, f.trees, http.MethodPost, "/v1/trees", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.health, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "dialogue-engine", resp.Service)
	assert.Equal(t, "healthy", resp.Components["progress_store"])
}

func TestHealthHandler_Degraded(t *testing.T) {
	f := newFixture(t)
	f.redis.Close()

	rec := f.do(t, f.health, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["progress_store"])
}
