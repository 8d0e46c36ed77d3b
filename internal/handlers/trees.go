package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linguaquest/dialogue-engine/internal/storage"
)

// TreeHandler serves the loaded dialogue content, read-only.
//
// Routes:
// GET /v1/trees      - List loaded tree ids
// GET /v1/trees/{id} - Read one tree
type TreeHandler struct {
	library *storage.Library
	logger  *slog.Logger
}

func NewTreeHandler(library *storage.Library, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		library: library,
		logger:  logger,
	}
}

type treeListResponse struct {
	Trees []string `json:"trees"`
}

func (h *TreeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for trees endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	treeID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/trees"), "/")
	if treeID == "" {
		if err := json.NewEncoder(w).Encode(treeListResponse{Trees: h.library.ListTrees()}); err != nil {
			h.logger.Error("Failed to encode tree list", "error", err)
		}
		return
	}

	tree := h.library.GetTree(treeID)
	if tree == nil {
		h.logger.Warn("Dialogue tree not found", "tree_id", treeID)
		writeError(w, h.logger, http.StatusNotFound, "Dialogue tree not found")
		return
	}

	if err := json.NewEncoder(w).Encode(tree); err != nil {
		h.logger.Error("Failed to encode tree response", "error", err)
	}
}
