package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealth(t *testing.T) {
	t.Run("status reports environment", func(t *testing.T) {
		w, body := serve(t, New("test"), "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "test", body["environment"])
	})

	t.Run("status carries court stats", func(t *testing.T) {
		h := New("test")
		h.SetStats(func() map[string]int { return map[string]int{"judges": 2, "free_lanes": 8} })
		_, body := serve(t, h, "/health")
		assert.Equal(t, map[string]any{"judges": float64(2), "free_lanes": float64(8)}, body["court"])
	})

	t.Run("liveness is always alive", func(t *testing.T) {
		w, body := serve(t, New("test"), "/health/live")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alive", body["status"])
	})

	t.Run("readiness aggregates checks", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("audit", func() error { return nil })
		w, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"audit": "up"}, body["checks"])

		h.RegisterCheck("lanes", func() error { return errors.New("no lanes") })
		w, body = serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", body["status"])
		assert.Equal(t, "down: no lanes", body["checks"].(map[string]any)["lanes"])
	})
}
