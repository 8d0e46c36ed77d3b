package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager is a uuid-keyed registry of live sessions behind the HTTP API.
// Each UI surface holds exactly one session, addressed by its id.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	logger   *slog.Logger
}

// NewManager creates an empty session registry.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger,
	}
}

// Add registers a session and returns its new id.
func (m *Manager) Add(s *Session) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.sessions[id] = s
	m.logger.Debug("Session registered", "session_id", id.String())
	return id
}

// Get returns the session with the given id, or nil.
func (m *Manager) Get(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Remove closes and drops the session with the given id. Removing an unknown
// id is a no-op.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if s != nil {
		s.Close()
		m.logger.Debug("Session removed", "session_id", id.String())
	}
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
