package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/content"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newServer(t *testing.T, db Pinger) http.Handler {
	t.Helper()
	cat, err := content.Builtin()
	require.NoError(t, err)
	return (&Server{Catalog: cat, DB: db}).Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(newServer(t, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(newServer(t, pinger{err: errors.New("refused")}), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "refused")
}

func TestPages(t *testing.T) {
	h := newServer(t, pinger{})

	rec := get(h, "/diseases/acute-stress-reaction")
	require.Equal(t, http.StatusOK, rec.Code)
	var p content.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Acute Stress Reaction", p.Name)
	assert.Equal(t, content.Diseases, p.Kind)

	rec = get(h, "/medicines/decolgen")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(h, "/medicines/acute-stress-reaction")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/diseases/acute-stress-reaction", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
