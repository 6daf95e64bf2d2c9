package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint, reporting the operating
// mode and which optional backends were wired at startup.
type HealthHandler struct {
	mode     string
	redis    bool
	postgres bool
	logger   *slog.Logger
}

// NewHealthHandler creates a HealthHandler. redis and postgres report
// whether the corresponding backend is configured and connected.
func NewHealthHandler(mode string, redis, postgres bool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		mode:     mode,
		redis:    redis,
		postgres: postgres,
		logger:   logger,
	}
}

// HealthCheck responds with the service status, mode, and backend wiring.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"mode":   h.mode,
		"backends": map[string]bool{
			"redis":    h.redis,
			"postgres": h.postgres,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
