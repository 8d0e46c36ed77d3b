package dialogue

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestAction_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, a *Action)
	}{
		{
			name:  "give_item",
			input: `{"type":"give_item","payload":{"itemId":"apple","qty":3}}`,
			check: func(t *testing.T, a *Action) {
				if a.Type != ActionGiveItem || a.Item.ItemID != "apple" || a.Item.Qty != 3 {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:  "give_item qty defaults to 1",
			input: `{"type":"give_item","payload":{"itemId":"apple"}}`,
			check: func(t *testing.T, a *Action) {
				if a.Item.Qty != 1 {
					t.Errorf("qty = %d, want 1", a.Item.Qty)
				}
			},
		},
		{
			name:  "take_item shares the item payload",
			input: `{"type":"take_item","payload":{"itemId":"coin","qty":2}}`,
			check: func(t *testing.T, a *Action) {
				if a.Type != ActionTakeItem || a.Item.ItemID != "coin" {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:  "give_xp",
			input: `{"type":"give_xp","payload":{"amount":10}}`,
			check: func(t *testing.T, a *Action) {
				if a.Type != ActionGiveXP || a.XP.Amount != 10 {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:  "start_mission",
			input: `{"type":"start_mission","payload":{"id":"first-order"}}`,
			check: func(t *testing.T, a *Action) {
				if a.Type != ActionStartMission || a.Mission.ID != "first-order" {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:  "complete_mission",
			input: `{"type":"complete_mission","payload":{"id":"first-order"}}`,
			check: func(t *testing.T, a *Action) {
				if a.Type != ActionCompleteMission || a.Mission.ID != "first-order" {
					t.Errorf("got %+v", a)
				}
			},
		},
		{
			name:  "teach_word",
			input: `{"type":"teach_word","payload":{"word":"manzana","translation":"apple"}}`,
			check: func(t *testing.T, a *Action) {
				if a.Type != ActionTeachWord || a.TeachWord.Word != "manzana" || a.TeachWord.Translation != "apple" {
					t.Errorf("got %+v", a)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Action
			if err := json.Unmarshal([]byte(tt.input), &a); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tt.check(t, &a)
		})
	}
}

func TestAction_UnmarshalJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "unknown type",
			input:   `{"type":"summon_dragon","payload":{}}`,
			wantErr: "unknown action type",
		},
		{
			name:    "missing payload",
			input:   `{"type":"give_xp"}`,
			wantErr: "missing its payload",
		},
		{
			name:    "item without itemId",
			input:   `{"type":"give_item","payload":{"qty":1}}`,
			wantErr: "missing itemId",
		},
		{
			name:    "negative qty",
			input:   `{"type":"take_item","payload":{"itemId":"coin","qty":-1}}`,
			wantErr: "negative qty",
		},
		{
			name:    "non-positive xp",
			input:   `{"type":"give_xp","payload":{"amount":0}}`,
			wantErr: "positive amount",
		},
		{
			name:    "mission without id",
			input:   `{"type":"start_mission","payload":{}}`,
			wantErr: "missing mission id",
		},
		{
			name:    "teach_word without translation",
			input:   `{"type":"teach_word","payload":{"word":"manzana"}}`,
			wantErr: "word and translation",
		},
		{
			name:    "malformed payload shape",
			input:   `{"type":"give_xp","payload":{"amount":"lots"}}`,
			wantErr: "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Action
			err := json.Unmarshal([]byte(tt.input), &a)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAction_MarshalJSON(t *testing.T) {
	a := Action{
		Type: ActionGiveItem,
		Item: &ItemPayload{ItemID: "apple", Qty: 3},
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Action
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Type != ActionGiveItem || back.Item.ItemID != "apple" || back.Item.Qty != 3 {
		t.Errorf("got %+v", back)
	}
}

func TestAction_UnmarshalYAML(t *testing.T) {
	input := `
type: teach_word
payload:
  word: pan
  translation: bread
`
	var a Action
	if err := yaml.Unmarshal([]byte(input), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Type != ActionTeachWord || a.TeachWord.Word != "pan" || a.TeachWord.Translation != "bread" {
		t.Errorf("got %+v", a)
	}
}

func TestAction_UnmarshalYAMLErrors(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input string
	}{
		{"unknown type", "type: cast_spell\npayload: {}"},
		{"missing payload", "type: give_xp"},
		{"invalid payload", "type: give_xp\npayload:\n  amount: -5"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var a Action
			if err := yaml.Unmarshal([]byte(tt.input), &a); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestAction_String(t *testing.T) {
	for _, tt := range []struct {
		action Action
		want   string
	}{
		{Action{Type: ActionGiveItem, Item: &ItemPayload{ItemID: "apple", Qty: 3}}, "give_item(apple x3)"},
		{Action{Type: ActionGiveXP, XP: &XPPayload{Amount: 10}}, "give_xp(10)"},
		{Action{Type: ActionStartMission, Mission: &MissionPayload{ID: "m1"}}, "start_mission(m1)"},
		{Action{Type: ActionTeachWord, TeachWord: &TeachWordPayload{Word: "pan", Translation: "bread"}}, "teach_word(pan=bread)"},
	} {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
