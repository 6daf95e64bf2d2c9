package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("reports mode and wired backends", func(t *testing.T) {
		h := NewHealthHandler("full", true, false, logger)

		rec := httptest.NewRecorder()
		h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status   string          `json:"status"`
			Mode     string          `json:"mode"`
			Backends map[string]bool `json:"backends"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "full", resp.Mode)
		assert.True(t, resp.Backends["redis"])
		assert.False(t, resp.Backends["postgres"])
	})
}
