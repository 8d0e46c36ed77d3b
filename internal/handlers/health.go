package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/linguaquest/dialogue-engine/internal/storage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

type HealthHandler struct {
	progress storage.ProgressStore
	library  *storage.Library
	logger   *slog.Logger
}

func NewHealthHandler(progress storage.ProgressStore, library *storage.Library, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		progress: progress,
		library:  library,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	if err := h.progress.Ping(ctx); err != nil {
		h.logger.Warn("Progress store health check failed", "error", err)
		components["progress_store"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["progress_store"] = "healthy"
	}

	components["content"] = map[string]interface{}{
		"status": "healthy",
		"trees":  h.library.Count(),
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "dialogue-engine",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
