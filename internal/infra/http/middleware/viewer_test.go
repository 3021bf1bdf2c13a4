package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
)

func TestViewerMiddleware(t *testing.T) {
	var got entity.Viewer
	h := Viewer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ViewerFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("X-User-ID", "admin-1")
	req.Header.Set("X-User-Role", "ADMIN")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.Viewer{ID: "admin-1", Role: entity.RoleAdmin}, got)
}

func TestViewerMiddlewareDefaultsToAgentAndRejectsAnonymous(t *testing.T) {
	var got entity.Viewer
	h := Viewer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ViewerFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("X-User-ID", "agent-7")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, entity.RoleAgent, got.Role)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestViewerMiddlewareUnknownRoleIsValidJSON(t *testing.T) {
	h := Viewer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria rodar")
	}))

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("X-User-ID", "agent-1")
	req.Header.Set("X-User-Role", `boss","admin":"true`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["error"])
	assert.Contains(t, body["message"], `boss","admin":"true`)
	assert.Len(t, body, 2)
}

func TestMetricsKeepsStatusCode(t *testing.T) {
	h := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
