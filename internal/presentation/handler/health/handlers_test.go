package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	h := NewHandler()

	t.Run("reports ok while healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"ok"`)
		require.Contains(t, rec.Body.String(), `"uptime"`)
	})

	t.Run("reports unavailable after shutdown begins", func(t *testing.T) {
		SetHealthy(false)
		defer SetHealthy(true)

		rec := httptest.NewRecorder()
		h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	})

	t.Run("recovers when marked healthy again", func(t *testing.T) {
		SetHealthy(false)
		SetHealthy(true)

		rec := httptest.NewRecorder()
		h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
	})
}
