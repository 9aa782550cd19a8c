package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/leadboard/internal/app"
	"github.com/thenoetrevino/leadboard/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Helpers
// =============================================================================

// setupServer returns a server over board "acme" with statuses "new" and "won"
func setupServer(t *testing.T) *Server {
	t.Helper()
	st := testutil.NewTestStore(t)
	testutil.CreateTestBoardWithStatuses(t, st, "acme", "New", "Won")
	return NewServer(app.New(st))
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func ids(t *testing.T, list any) []string {
	t.Helper()
	items, ok := list.([]any)
	require.True(t, ok, "expected a list, got %T", list)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.(map[string]any)["id"].(string)
	}
	return out
}

// =============================================================================
// Health and metrics
// =============================================================================

func TestHealthz(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestMetrics(t *testing.T) {
	s := setupServer(t)
	do(t, s, http.MethodPost, "/boards/acme/statuses/new/reorder", gin.H{"index": 0})

	w := do(t, s, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leadboard_ordering_operations_total")
}

// =============================================================================
// Boards and statuses
// =============================================================================

func TestBoards(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodPost, "/boards", gin.H{"id": "beta", "name": "Beta"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Beta", decode(t, w)["name"])

	w = do(t, s, http.MethodGet, "/boards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"acme", "beta"}, ids(t, decode(t, w)["boards"]))

	w = do(t, s, http.MethodGet, "/boards/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decode(t, w)["code"])
}

func TestShowBoard(t *testing.T) {
	s := setupServer(t)
	w := do(t, s, http.MethodPost, "/boards/acme/statuses/new/leads",
		gin.H{"name": "Ana", "email": "ana@example.com", "phone": "555"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, s, http.MethodGet, "/boards/acme", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	columns := body["statuses"].([]any)
	require.Len(t, columns, 2)
	first := columns[0].(map[string]any)
	assert.Equal(t, "New", first["title"])
	assert.Len(t, first["leads"], 1)
}

func TestStatusLifecycle(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodPost, "/boards/acme/statuses", gin.H{"title": "Proposta Enviada", "color": "#FFAA00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "propostaenviada", decode(t, w)["id"])

	w = do(t, s, http.MethodPost, "/boards/acme/statuses", gin.H{"title": "proposta enviada"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeConflict, decode(t, w)["code"])

	w = do(t, s, http.MethodPost, "/boards/acme/statuses", gin.H{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPatch, "/boards/acme/statuses/propostaenviada", gin.H{"title": "Proposal"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Proposal", decode(t, w)["title"])

	w = do(t, s, http.MethodPost, "/boards/acme/statuses/propostaenviada/reorder", gin.H{"index": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"propostaenviada", "new", "won"}, ids(t, decode(t, w)["statuses"]))

	w = do(t, s, http.MethodPost, "/boards/acme/statuses/propostaenviada/reorder", gin.H{"position": 5000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"new", "won", "propostaenviada"}, ids(t, decode(t, w)["statuses"]))

	w = do(t, s, http.MethodDelete, "/boards/acme/statuses/propostaenviada", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodDelete, "/boards/acme/statuses/propostaenviada", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderStatus_BadRequests(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodPost, "/boards/acme/statuses/new/reorder", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/boards/acme/statuses/new/reorder", gin.H{"index": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidPosition, decode(t, w)["code"])

	w = do(t, s, http.MethodPost, "/boards/acme/statuses/won/reorder", gin.H{"position": int64(math.MaxInt64 - 10)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidPosition, decode(t, w)["code"])

	w = do(t, s, http.MethodGet, "/boards/acme/statuses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"new", "won"}, ids(t, decode(t, w)["statuses"]))
}

// =============================================================================
// Leads
// =============================================================================

func TestLeadLifecycle(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodPost, "/boards/acme/statuses/new/leads",
		gin.H{"name": "Ana", "email": "ana@example.com", "phone": "555", "company": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)
	path := "/boards/acme/statuses/new/leads/" + id

	w = do(t, s, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme", decode(t, w)["company"])

	w = do(t, s, http.MethodPatch, path, gin.H{"phone": "556"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "556", decode(t, w)["phone"])

	w = do(t, s, http.MethodPost, path+"/interactions", gin.H{"notes": "called"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["interactions"], 1)

	w = do(t, s, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateLead_AtIndex(t *testing.T) {
	s := setupServer(t)
	st := s.app.Store()
	testutil.CreateTestLead(t, st, "acme", "new", "A")
	testutil.CreateTestLead(t, st, "acme", "new", "B")

	w := do(t, s, http.MethodPost, "/boards/acme/statuses/new/leads",
		gin.H{"name": "Caio", "email": "caio@example.com", "phone": "555", "index": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)

	assert.Equal(t, []string{"a", id, "b"}, testutil.LeadOrder(t, st, "acme", "new"))
}

func TestCreateLead_Invalid(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodPost, "/boards/acme/statuses/new/leads", gin.H{"name": "Ana", "email": "nope", "phone": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidInput, decode(t, w)["code"])

	w = do(t, s, http.MethodPost, "/boards/acme/statuses/lost/leads", gin.H{"name": "Ana", "email": "a@b.co", "phone": "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderAndMoveLeads(t *testing.T) {
	s := setupServer(t)
	st := s.app.Store()
	for _, n := range []string{"A", "B", "C", "D"} {
		testutil.CreateTestLead(t, st, "acme", "new", n)
	}

	w := do(t, s, http.MethodPost, "/boards/acme/statuses/new/leads/c/reorder", gin.H{"index": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(t, decode(t, w)["leads"]))

	w = do(t, s, http.MethodPost, "/boards/acme/leads/a/move", gin.H{"from": "new", "to": "won"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "won", decode(t, w)["status_id"])
	assert.Equal(t, []string{"c", "b", "d"}, testutil.LeadOrder(t, st, "acme", "new"))
	assert.Equal(t, []string{"a"}, testutil.LeadOrder(t, st, "acme", "won"))

	w = do(t, s, http.MethodPost, "/boards/acme/leads/a/move", gin.H{"from": "won", "to": "lost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/boards/acme/statuses/new/rebalance", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"c", "b", "d"}, ids(t, decode(t, w)["leads"]))

	w = do(t, s, http.MethodDelete, "/boards/acme/statuses/new/leads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["deleted"])
}
