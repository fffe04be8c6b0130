package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/parlance/pkg/adapters/memory"
	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Save(context.Background(), &domain.Snapshot{
		SessionID:    "abc",
		CurrentState: "research",
		Status:       domain.StatusWaitingInput,
		Transcript:   []domain.Turn{{Role: domain.RoleAssistant, Content: "hi"}},
	}))
	return store
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, NewHandler(memory.NewStore()), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessions(t *testing.T) {
	h := NewHandler(seededStore(t))

	rec := do(t, h, http.MethodGet, "/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":["abc"]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/sessions/abc")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "research", snap.CurrentState)
	assert.Equal(t, domain.StatusWaitingInput, snap.Status)

	rec = do(t, h, http.MethodGet, "/sessions/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	h := NewHandler(seededStore(t))

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/sessions/abc").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/sessions/abc").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/sessions/abc").Code)
}

func TestEmptySessionList(t *testing.T) {
	rec := do(t, NewHandler(memory.NewStore()), http.MethodGet, "/sessions")
	assert.JSONEq(t, `{"sessions":[]}`, rec.Body.String())
}

type brokenStore struct{ *memory.Store }

func (brokenStore) List(context.Context) ([]string, error) {
	return nil, errors.New("connection reset")
}

func TestStoreErrors(t *testing.T) {
	rec := do(t, NewHandler(brokenStore{memory.NewStore()}), http.MethodGet, "/sessions")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStates(t *testing.T) {
	cfg, err := config.Parse([]byte(`
initial_state = "greeting"
[states.greeting]
prompt = "Hi."
transitions = ["error"]
[states.error]
prompt = "Oops."
`), config.FormatTOML)
	require.NoError(t, err)

	h := NewHandler(memory.NewStore(), WithConfig(cfg))
	rec := do(t, h, http.MethodGet, "/states")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		InitialState string      `json:"initial_state"`
		States       []StateView `json:"states"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "greeting", body.InitialState)
	require.Len(t, body.States, 2)
	assert.Equal(t, "error", body.States[0].ID)
	assert.Empty(t, body.States[0].Transitions)
	assert.Equal(t, []string{"error"}, body.States[1].Transitions)

	assert.Equal(t, http.StatusNotFound, do(t, NewHandler(memory.NewStore()), http.MethodGet, "/states").Code)
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("parlance_up 1\n"))
	})
	h := NewHandler(memory.NewStore(), WithMetrics(metrics))
	rec := do(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "parlance_up 1\n", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, NewHandler(memory.NewStore()), http.MethodGet, "/metrics").Code)
}
