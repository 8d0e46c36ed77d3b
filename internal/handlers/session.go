package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linguaquest/dialogue-engine/internal/services"
	"github.com/linguaquest/dialogue-engine/internal/session"
	"github.com/linguaquest/dialogue-engine/internal/storage"
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// SessionHandler exposes the dialogue session commands over HTTP.
//
// Routes:
// POST   /v1/sessions              - Open a new session
// GET    /v1/sessions/{id}         - Read the session view
// POST   /v1/sessions/{id}/input   - Submit spoken/typed input
// POST   /v1/sessions/{id}/choice  - Select a choice response
// DELETE /v1/sessions/{id}         - Close and drop the session
type SessionHandler struct {
	manager        *session.Manager
	factory        *services.Factory
	progress       storage.ProgressStore
	defaultTier    services.Tier
	autoCloseDelay time.Duration
	logger         *slog.Logger
}

func NewSessionHandler(manager *session.Manager, factory *services.Factory, progress storage.ProgressStore, defaultTier services.Tier, autoCloseDelay time.Duration, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		manager:        manager,
		factory:        factory,
		progress:       progress,
		defaultTier:    defaultTier,
		autoCloseDelay: autoCloseDelay,
		logger:         logger,
	}
}

// OpenSessionRequest defines the request body for opening a session.
type OpenSessionRequest struct {
	TreeID    string `json:"tree_id"`
	NPCID     string `json:"npc_id"`
	ProfileID string `json:"profile_id,omitempty"` // Optional: learner profile for effect execution
	Tier      string `json:"tier,omitempty"`       // Optional: override the default tier
}

type sessionResponse struct {
	ID       uuid.UUID        `json:"id"`
	Session  session.View     `json:"session"`
	Feedback *speech.Feedback `json:"feedback,omitempty"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type choiceRequest struct {
	ResponseID string `json:"response_id"`
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Use POST to open a session")
			return
		}
		h.handleOpen(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	s := h.manager.Get(sessionID)
	if s == nil {
		h.logger.Warn("Session not found", "session_id", sessionID.String())
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.writeSession(w, sessionID, s, nil)
		case http.MethodDelete:
			h.manager.Remove(sessionID)
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	switch parts[1] {
	case "input":
		h.handleInput(w, r, sessionID, s)
	case "choice":
		h.handleChoice(w, r, sessionID, s)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session command")
	}
}

func (h *SessionHandler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.TreeID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "tree_id field is required")
		return
	}

	tier := h.defaultTier
	if req.Tier != "" {
		tier = services.ParseTier(req.Tier)
	}
	bundle := h.factory.ForTier(tier)

	executor := h.executorFor(req.ProfileID)
	s := session.New(bundle, executor, h.logger,
		session.WithAutoCloseDelay(h.autoCloseDelay))

	if err := s.Open(r.Context(), req.TreeID, req.NPCID); err != nil {
		if errors.Is(err, session.ErrTreeNotFound) {
			writeError(w, h.logger, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("Failed to open session", "error", err, "tree_id", req.TreeID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to open session")
		return
	}

	id := h.manager.Add(s)
	h.logger.Info("Session opened", "session_id", id.String(), "tree_id", req.TreeID, "npc_id", req.NPCID, "tier", string(tier))

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(sessionResponse{ID: id, Session: s.View()}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

// executorFor binds the learner profile to the effect-executor boundary.
// Without a profile (or a progress backend) actions are logged and dropped.
func (h *SessionHandler) executorFor(profileID string) session.ActionExecutor {
	if h.progress == nil || profileID == "" {
		return &session.NoopExecutor{Logger: h.logger}
	}

	id, err := uuid.Parse(profileID)
	if err != nil {
		h.logger.Warn("Invalid profile ID, actions will be discarded", "profile_id", profileID, "error", err)
		return &session.NoopExecutor{Logger: h.logger}
	}
	return storage.NewProfileExecutor(h.progress, id)
}

func (h *SessionHandler) handleInput(w http.ResponseWriter, r *http.Request, id uuid.UUID, s *session.Session) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	feedback, err := s.SubmitInput(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotActive):
			writeError(w, h.logger, http.StatusConflict, "Session is not active")
		case errors.Is(err, session.ErrEvaluationInFlight):
			writeError(w, h.logger, http.StatusConflict, "An evaluation is already in progress")
		default:
			h.logger.Error("Failed to submit input", "error", err, "session_id", id.String())
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to submit input")
		}
		return
	}

	h.writeSession(w, id, s, feedback)
}

func (h *SessionHandler) handleChoice(w http.ResponseWriter, r *http.Request, id uuid.UUID, s *session.Session) {
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if err := s.SelectChoice(r.Context(), req.ResponseID); err != nil {
		switch {
		case errors.Is(err, session.ErrNotActive):
			writeError(w, h.logger, http.StatusConflict, "Session is not active")
		case errors.Is(err, session.ErrInvalidChoice):
			writeError(w, h.logger, http.StatusBadRequest, "Invalid choice response")
		default:
			h.logger.Error("Failed to select choice", "error", err, "session_id", id.String())
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to select choice")
		}
		return
	}

	h.writeSession(w, id, s, nil)
}

func (h *SessionHandler) writeSession(w http.ResponseWriter, id uuid.UUID, s *session.Session, feedback *speech.Feedback) {
	resp := sessionResponse{ID: id, Session: s.View(), Feedback: feedback}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}
