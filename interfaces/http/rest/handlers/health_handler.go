package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthResponse reports liveness
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Health returns a liveness handler
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(version string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, logger, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Version:   version,
			Timestamp: time.Now().UTC(),
		})
	}
}
