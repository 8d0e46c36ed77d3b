package dialogue

import "fmt"

// FallbackNodeID is the reserved node id a tree may define to re-orient the
// player after repeated failed attempts. Trees without one simply keep the
// player on the current node.
const FallbackNodeID = "not-understood"

// Tree is a named directed graph of conversation nodes with one designated
// start node. Content is loaded once at startup and never mutated afterwards.
type Tree struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	StartNodeID string `json:"startNodeId" yaml:"startNodeId"`
	Nodes       []Node `json:"nodes" yaml:"nodes"`
}

// Node returns the node with the given id, or nil if the tree doesn't
// define it.
func (t *Tree) Node(id string) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}

// Start returns the tree's designated start node, or nil if startNodeId
// doesn't resolve.
func (t *Tree) Start() *Node {
	return t.Node(t.StartNodeID)
}

// Fallback returns the tree's not-understood node, if it defines one.
func (t *Tree) Fallback() *Node {
	return t.Node(FallbackNodeID)
}

// Validate checks the structural invariants of a tree: a non-empty id, unique
// node ids, a resolvable start node, and resolvable destinations on every
// response. Content failing validation is rejected at load time.
func (t *Tree) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tree is missing an id")
	}
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree %q has no nodes", t.ID)
	}

	seen := make(map[string]bool, len(t.Nodes))
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("tree %q: node at index %d is missing an id", t.ID, i)
		}
		if seen[n.ID] {
			return fmt.Errorf("tree %q: duplicate node id %q", t.ID, n.ID)
		}
		seen[n.ID] = true

		if err := n.validate(); err != nil {
			return fmt.Errorf("tree %q: %w", t.ID, err)
		}
	}

	if t.StartNodeID == "" {
		return fmt.Errorf("tree %q is missing startNodeId", t.ID)
	}
	if !seen[t.StartNodeID] {
		return fmt.Errorf("tree %q: startNodeId %q does not resolve", t.ID, t.StartNodeID)
	}

	for i := range t.Nodes {
		n := &t.Nodes[i]
		for j := range n.Responses {
			r := &n.Responses[j]
			if !seen[r.NextNodeID] {
				return fmt.Errorf("tree %q: node %q response %q points to unknown node %q",
					t.ID, n.ID, r.ID, r.NextNodeID)
			}
		}
	}

	return nil
}
