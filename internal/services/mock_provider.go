package services

import (
	"context"
	"sync"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// MockProvider is a mock implementation of ContentProvider for testing. It
// serves trees from an in-memory map, like the static provider but without a
// content directory.
type MockProvider struct {
	Trees map[string]*dialogue.Tree

	GetDialogueTreeFunc func(ctx context.Context, treeID string, dc *speech.Context) (*dialogue.Tree, error)

	// Track calls for testing
	GetTreeCalls []string

	mu sync.Mutex
}

var _ ContentProvider = (*MockProvider)(nil)

// NewMockProvider creates a mock provider serving the given trees.
func NewMockProvider(trees ...*dialogue.Tree) *MockProvider {
	m := &MockProvider{
		Trees:        make(map[string]*dialogue.Tree),
		GetTreeCalls: make([]string, 0),
	}
	for _, t := range trees {
		m.Trees[t.ID] = t
	}
	return m
}

func (m *MockProvider) GetDialogueTree(ctx context.Context, treeID string, dc *speech.Context) (*dialogue.Tree, error) {
	m.mu.Lock()
	m.GetTreeCalls = append(m.GetTreeCalls, treeID)
	fn := m.GetDialogueTreeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, treeID, dc)
	}

	return m.Trees[treeID], nil
}

func (m *MockProvider) GetNode(tree *dialogue.Tree, nodeID string) *dialogue.Node {
	if tree == nil {
		return nil
	}
	return tree.Node(nodeID)
}

// MockDynamicProvider extends MockProvider with the dynamic-response
// capability, for testing the capability check.
type MockDynamicProvider struct {
	MockProvider

	GenerateDynamicResponseFunc func(ctx context.Context, input string, dc *speech.Context) (*GeneratedResponse, error)
}

var _ DynamicProvider = (*MockDynamicProvider)(nil)

func (m *MockDynamicProvider) GenerateDynamicResponse(ctx context.Context, input string, dc *speech.Context) (*GeneratedResponse, error) {
	if m.GenerateDynamicResponseFunc != nil {
		return m.GenerateDynamicResponseFunc(ctx, input, dc)
	}
	return &GeneratedResponse{
		Node: &dialogue.Node{
			ID:      "generated",
			Speaker: dialogue.SpeakerNPC,
			Text:    "Hmm, interesting...",
		},
		IsGenerated: true,
	}, nil
}
