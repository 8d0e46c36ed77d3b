package dialogue

import (
	"encoding/json"
	"strings"
	"testing"
)

func validTree() *Tree {
	return &Tree{
		ID:          "greet",
		Title:       "Greeting",
		StartNodeID: "start",
		Nodes: []Node{
			{
				ID:      "start",
				Speaker: SpeakerNPC,
				Text:    "Hello!",
				Responses: []Response{
					{
						ID:             "reply",
						Text:           "Hello to you",
						ExpectedSpeech: []string{"hola"},
						NextNodeID:     "end",
						RequiresType:   InputSpeak,
					},
				},
			},
			{ID: "end", Speaker: SpeakerNPC, Text: "Bye!"},
		},
	}
}

func TestTree_Validate(t *testing.T) {
	if err := validTree().Validate(); err != nil {
		t.Fatalf("expected valid tree, got %v", err)
	}
}

func TestTree_ValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Tree)
		wantErr string
	}{
		{
			name:    "missing tree id",
			mutate:  func(tr *Tree) { tr.ID = "" },
			wantErr: "missing an id",
		},
		{
			name:    "no nodes",
			mutate:  func(tr *Tree) { tr.Nodes = nil },
			wantErr: "has no nodes",
		},
		{
			name:    "duplicate node id",
			mutate:  func(tr *Tree) { tr.Nodes[1].ID = "start" },
			wantErr: "duplicate node id",
		},
		{
			name:    "missing startNodeId",
			mutate:  func(tr *Tree) { tr.StartNodeID = "" },
			wantErr: "missing startNodeId",
		},
		{
			name:    "unresolvable startNodeId",
			mutate:  func(tr *Tree) { tr.StartNodeID = "nowhere" },
			wantErr: "does not resolve",
		},
		{
			name:    "dangling response destination",
			mutate:  func(tr *Tree) { tr.Nodes[0].Responses[0].NextNodeID = "nowhere" },
			wantErr: "unknown node",
		},
		{
			name:    "unknown speaker",
			mutate:  func(tr *Tree) { tr.Nodes[0].Speaker = "narrator" },
			wantErr: "unknown speaker",
		},
		{
			name:    "unknown input type",
			mutate:  func(tr *Tree) { tr.Nodes[0].Responses[0].RequiresType = "shout" },
			wantErr: "unknown requiresType",
		},
		{
			name: "duplicate response id",
			mutate: func(tr *Tree) {
				r := tr.Nodes[0].Responses[0]
				tr.Nodes[0].Responses = append(tr.Nodes[0].Responses, r)
			},
			wantErr: "duplicate response id",
		},
		{
			name:    "response missing nextNodeId",
			mutate:  func(tr *Tree) { tr.Nodes[0].Responses[0].NextNodeID = "" },
			wantErr: "missing nextNodeId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTree()
			tt.mutate(tr)
			err := tr.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTree_Lookups(t *testing.T) {
	tr := validTree()

	if n := tr.Node("start"); n == nil || n.ID != "start" {
		t.Errorf("Node(start) = %v", n)
	}
	if n := tr.Node("missing"); n != nil {
		t.Errorf("Node(missing) = %v, want nil", n)
	}
	if s := tr.Start(); s == nil || s.ID != "start" {
		t.Errorf("Start() = %v", s)
	}
	if fb := tr.Fallback(); fb != nil {
		t.Errorf("Fallback() = %v, want nil for a tree without one", fb)
	}

	tr.Nodes = append(tr.Nodes, Node{ID: FallbackNodeID, Speaker: SpeakerNPC, Text: "Sorry?"})
	if fb := tr.Fallback(); fb == nil {
		t.Error("Fallback() = nil after adding a not-understood node")
	}
}

func TestNode_IsTerminal(t *testing.T) {
	tr := validTree()
	if tr.Nodes[0].IsTerminal() {
		t.Error("node with responses reported terminal")
	}
	if !tr.Nodes[1].IsTerminal() {
		t.Error("node without responses not reported terminal")
	}
}

func TestResponse_AcceptsTranscript(t *testing.T) {
	for _, tt := range []struct {
		typ  InputType
		want bool
	}{
		{InputSpeak, true},
		{InputWrite, true},
		{InputChoice, false},
	} {
		r := Response{RequiresType: tt.typ}
		if got := r.AcceptsTranscript(); got != tt.want {
			t.Errorf("AcceptsTranscript(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestTree_JSONRoundTrip(t *testing.T) {
	src := validTree()
	src.Nodes[1].Action = &Action{
		Type: ActionGiveXP,
		XP:   &XPPayload{Amount: 5},
	}

	data, err := json.Marshal(src)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Tree
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("round-tripped tree invalid: %v", err)
	}
	if got.StartNodeID != "start" || len(got.Nodes) != 2 {
		t.Errorf("unexpected tree after round trip: %+v", got)
	}
	if got.Nodes[1].Action == nil || got.Nodes[1].Action.XP.Amount != 5 {
		t.Errorf("action lost in round trip: %+v", got.Nodes[1].Action)
	}
}
