package dialogue

import "fmt"

// Speaker identifies who delivers a node's line.
type Speaker string

const (
	SpeakerNPC    Speaker = "npc"
	SpeakerPlayer Speaker = "player"
)

// Node is a single line of conversation. Text carries the player's native
// language, TextInTargetLanguage the language being taught. A node with no
// responses is terminal and ends the conversation.
type Node struct {
	ID                   string     `json:"id" yaml:"id"`
	Speaker              Speaker    `json:"speaker" yaml:"speaker"`
	Text                 string     `json:"text" yaml:"text"`
	TextInTargetLanguage string     `json:"textInTargetLanguage,omitempty" yaml:"textInTargetLanguage,omitempty"`
	Responses            []Response `json:"responses,omitempty" yaml:"responses,omitempty"`
	Action               *Action    `json:"action,omitempty" yaml:"action,omitempty"`
}

// IsTerminal reports whether the node ends the conversation.
func (n *Node) IsTerminal() bool {
	return len(n.Responses) == 0
}

// Response returns the response with the given id, or nil.
func (n *Node) Response(id string) *Response {
	for i := range n.Responses {
		if n.Responses[i].ID == id {
			return &n.Responses[i]
		}
	}
	return nil
}

func (n *Node) validate() error {
	switch n.Speaker {
	case SpeakerNPC, SpeakerPlayer:
	default:
		return fmt.Errorf("node %q has unknown speaker %q", n.ID, n.Speaker)
	}

	seen := make(map[string]bool, len(n.Responses))
	for i := range n.Responses {
		r := &n.Responses[i]
		if r.ID == "" {
			return fmt.Errorf("node %q: response at index %d is missing an id", n.ID, i)
		}
		if seen[r.ID] {
			return fmt.Errorf("node %q: duplicate response id %q", n.ID, r.ID)
		}
		seen[r.ID] = true

		switch r.RequiresType {
		case InputSpeak, InputWrite, InputChoice:
		default:
			return fmt.Errorf("node %q: response %q has unknown requiresType %q", n.ID, r.ID, r.RequiresType)
		}
		if r.NextNodeID == "" {
			return fmt.Errorf("node %q: response %q is missing nextNodeId", n.ID, r.ID)
		}
	}

	return nil
}
