package services

import (
	"context"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// ContentProvider resolves dialogue tree and node lookups. A missing tree is
// a normal, logged outcome: GetDialogueTree returns nil, nil rather than an
// error.
type ContentProvider interface {
	// GetDialogueTree returns the tree with the given id, or nil if no such
	// tree exists.
	GetDialogueTree(ctx context.Context, treeID string, dc *speech.Context) (*dialogue.Tree, error)

	// GetNode returns the node with the given id within the tree, or nil.
	GetNode(tree *dialogue.Tree, nodeID string) *dialogue.Node
}

// GeneratedResponse is a dynamically produced continuation for input that
// static content cannot answer.
type GeneratedResponse struct {
	Node               *dialogue.Node `json:"node"`
	IsGenerated        bool           `json:"isGenerated"`
	SuggestedResponses []string       `json:"suggestedResponses,omitempty"`
}

// DynamicProvider is the optional capability of generating a continuation on
// the fly. Free providers do not implement it; use DynamicCapability before
// invoking.
type DynamicProvider interface {
	ContentProvider

	GenerateDynamicResponse(ctx context.Context, input string, dc *speech.Context) (*GeneratedResponse, error)
}

// DynamicCapability reports whether the provider can generate dynamic
// responses, forcing callers to check for the capability explicitly instead
// of assuming it.
func DynamicCapability(p ContentProvider) (DynamicProvider, bool) {
	dp, ok := p.(DynamicProvider)
	return dp, ok
}
