package services

import (
	"context"
	"log/slog"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// TreeSource is the read side of the content library.
type TreeSource interface {
	// GetTree returns the tree with the given id, or nil.
	GetTree(id string) *dialogue.Tree
}

// StaticProvider serves dialogue trees from the content library loaded at
// startup. It deliberately does not implement DynamicProvider: the free tier
// has no fallback when static lookup can't continue the conversation.
type StaticProvider struct {
	source TreeSource
	logger *slog.Logger
}

var _ ContentProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider backed by the given tree source.
func NewStaticProvider(source TreeSource, logger *slog.Logger) *StaticProvider {
	return &StaticProvider{
		source: source,
		logger: logger,
	}
}

func (p *StaticProvider) GetDialogueTree(ctx context.Context, treeID string, dc *speech.Context) (*dialogue.Tree, error) {
	tree := p.source.GetTree(treeID)
	if tree == nil {
		p.logger.Warn("Dialogue tree not found", "tree_id", treeID)
		return nil, nil
	}
	return tree, nil
}

func (p *StaticProvider) GetNode(tree *dialogue.Tree, nodeID string) *dialogue.Node {
	if tree == nil {
		return nil
	}
	return tree.Node(nodeID)
}
