package session

import (
	"context"
	"sync"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
)

// MockExecutor is a mock implementation of ActionExecutor for testing.
type MockExecutor struct {
	ExecuteFunc func(ctx context.Context, action *dialogue.Action) error

	// Track calls for testing
	ExecuteCalls []*dialogue.Action

	mu sync.Mutex
}

var _ ActionExecutor = (*MockExecutor)(nil)

// NewMockExecutor creates a new mock executor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		ExecuteCalls: make([]*dialogue.Action, 0),
	}
}

func (m *MockExecutor) Execute(ctx context.Context, action *dialogue.Action) error {
	m.mu.Lock()
	m.ExecuteCalls = append(m.ExecuteCalls, action)
	fn := m.ExecuteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, action)
	}
	return nil
}

// Calls returns a copy of the recorded actions in a thread-safe way.
func (m *MockExecutor) Calls() []*dialogue.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]*dialogue.Action, len(m.ExecuteCalls))
	copy(calls, m.ExecuteCalls)
	return calls
}
