package services

import (
	"context"
	"sync"

	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// MockEvaluator is a mock implementation of ResponseEvaluator for testing.
type MockEvaluator struct {
	EvaluateFunc func(ctx context.Context, input string, acceptedPhrases []string, dc *speech.Context) (*speech.Evaluation, error)
	Threshold    float64

	// Track calls for testing
	EvaluateCalls []EvaluateCall

	mu sync.Mutex // protects all fields above
}

type EvaluateCall struct {
	Input           string
	AcceptedPhrases []string
}

var _ ResponseEvaluator = (*MockEvaluator)(nil)

// NewMockEvaluator creates a new mock evaluator.
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{
		Threshold:     DefaultSimilarityThreshold,
		EvaluateCalls: make([]EvaluateCall, 0),
	}
}

func (m *MockEvaluator) Evaluate(ctx context.Context, input string, acceptedPhrases []string, dc *speech.Context) (*speech.Evaluation, error) {
	m.mu.Lock()
	m.EvaluateCalls = append(m.EvaluateCalls, EvaluateCall{
		Input:           input,
		AcceptedPhrases: acceptedPhrases,
	})
	fn := m.EvaluateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, input, acceptedPhrases, dc)
	}

	// Default behavior - no match
	return &speech.Evaluation{}, nil
}

func (m *MockEvaluator) SimilarityThreshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Threshold
}

// SetEvaluateError sets up the mock to return an error on Evaluate.
func (m *MockEvaluator) SetEvaluateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EvaluateFunc = func(ctx context.Context, input string, acceptedPhrases []string, dc *speech.Context) (*speech.Evaluation, error) {
		return nil, err
	}
}

// CallCount returns the number of Evaluate calls in a thread-safe way.
func (m *MockEvaluator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.EvaluateCalls)
}
