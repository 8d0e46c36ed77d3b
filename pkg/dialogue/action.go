package dialogue

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ActionType identifies the kind of side effect a node triggers.
type ActionType string

const (
	ActionGiveItem        ActionType = "give_item"
	ActionTakeItem        ActionType = "take_item"
	ActionGiveXP          ActionType = "give_xp"
	ActionStartMission    ActionType = "start_mission"
	ActionCompleteMission ActionType = "complete_mission"
	ActionTeachWord       ActionType = "teach_word"
)

// ItemPayload is the payload for give_item and take_item.
type ItemPayload struct {
	ItemID string `json:"itemId" yaml:"itemId"`
	Qty    int    `json:"qty" yaml:"qty"`
}

// XPPayload is the payload for give_xp.
type XPPayload struct {
	Amount int `json:"amount" yaml:"amount"`
}

// MissionPayload is the payload for start_mission and complete_mission.
type MissionPayload struct {
	ID string `json:"id" yaml:"id"`
}

// TeachWordPayload is the payload for teach_word.
type TeachWordPayload struct {
	Word        string `json:"word" yaml:"word"`
	Translation string `json:"translation" yaml:"translation"`
}

// Action is a closed tagged variant with one payload shape per kind. Exactly
// one payload field is set, matching Type. Content files carry actions as a
// {type, payload} envelope; decoding rejects unknown types and malformed
// payloads so bad content fails at load time rather than at execution.
type Action struct {
	Type      ActionType        `json:"-" yaml:"-"`
	Item      *ItemPayload      `json:"-" yaml:"-"` // give_item, take_item
	XP        *XPPayload        `json:"-" yaml:"-"` // give_xp
	Mission   *MissionPayload   `json:"-" yaml:"-"` // start_mission, complete_mission
	TeachWord *TeachWordPayload `json:"-" yaml:"-"` // teach_word
}

type actionEnvelope struct {
	Type    ActionType      `json:"type" yaml:"type"`
	Payload json.RawMessage `json:"payload,omitempty" yaml:"-"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode action envelope: %w", err)
	}

	decode := func(v interface{}) error {
		if len(env.Payload) == 0 {
			return fmt.Errorf("action %q is missing its payload", env.Type)
		}
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return fmt.Errorf("failed to decode %q payload: %w", env.Type, err)
		}
		return nil
	}

	a.Type = env.Type
	switch env.Type {
	case ActionGiveItem, ActionTakeItem:
		p := &ItemPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.Item = p
	case ActionGiveXP:
		p := &XPPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.XP = p
	case ActionStartMission, ActionCompleteMission:
		p := &MissionPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.Mission = p
	case ActionTeachWord:
		p := &TeachWordPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.TeachWord = p
	default:
		return fmt.Errorf("unknown action type %q", env.Type)
	}

	return a.validate()
}

func (a Action) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch a.Type {
	case ActionGiveItem, ActionTakeItem:
		payload = a.Item
	case ActionGiveXP:
		payload = a.XP
	case ActionStartMission, ActionCompleteMission:
		payload = a.Mission
	case ActionTeachWord:
		payload = a.TeachWord
	default:
		return nil, fmt.Errorf("unknown action type %q", a.Type)
	}

	return json.Marshal(struct {
		Type    ActionType  `json:"type"`
		Payload interface{} `json:"payload"`
	}{Type: a.Type, Payload: payload})
}

// UnmarshalYAML mirrors the JSON envelope for YAML content files.
func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	var env struct {
		Type    ActionType `yaml:"type"`
		Payload yaml.Node  `yaml:"payload"`
	}
	if err := value.Decode(&env); err != nil {
		return fmt.Errorf("failed to decode action envelope: %w", err)
	}

	decode := func(v interface{}) error {
		if env.Payload.IsZero() {
			return fmt.Errorf("action %q is missing its payload", env.Type)
		}
		if err := env.Payload.Decode(v); err != nil {
			return fmt.Errorf("failed to decode %q payload: %w", env.Type, err)
		}
		return nil
	}

	a.Type = env.Type
	switch env.Type {
	case ActionGiveItem, ActionTakeItem:
		p := &ItemPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.Item = p
	case ActionGiveXP:
		p := &XPPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.XP = p
	case ActionStartMission, ActionCompleteMission:
		p := &MissionPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.Mission = p
	case ActionTeachWord:
		p := &TeachWordPayload{}
		if err := decode(p); err != nil {
			return err
		}
		a.TeachWord = p
	default:
		return fmt.Errorf("unknown action type %q", env.Type)
	}

	return a.validate()
}

func (a *Action) validate() error {
	switch a.Type {
	case ActionGiveItem, ActionTakeItem:
		if a.Item.ItemID == "" {
			return fmt.Errorf("action %q is missing itemId", a.Type)
		}
		if a.Item.Qty == 0 {
			a.Item.Qty = 1
		}
		if a.Item.Qty < 0 {
			return fmt.Errorf("action %q has negative qty %d", a.Type, a.Item.Qty)
		}
	case ActionGiveXP:
		if a.XP.Amount <= 0 {
			return fmt.Errorf("action give_xp requires a positive amount, got %d", a.XP.Amount)
		}
	case ActionStartMission, ActionCompleteMission:
		if a.Mission.ID == "" {
			return fmt.Errorf("action %q is missing mission id", a.Type)
		}
	case ActionTeachWord:
		if a.TeachWord.Word == "" || a.TeachWord.Translation == "" {
			return fmt.Errorf("action teach_word requires both word and translation")
		}
	}
	return nil
}

// String renders a compact description for logs.
func (a *Action) String() string {
	switch a.Type {
	case ActionGiveItem, ActionTakeItem:
		return fmt.Sprintf("%s(%s x%d)", a.Type, a.Item.ItemID, a.Item.Qty)
	case ActionGiveXP:
		return fmt.Sprintf("give_xp(%d)", a.XP.Amount)
	case ActionStartMission, ActionCompleteMission:
		return fmt.Sprintf("%s(%s)", a.Type, a.Mission.ID)
	case ActionTeachWord:
		return fmt.Sprintf("teach_word(%s=%s)", a.TeachWord.Word, a.TeachWord.Translation)
	}
	return string(a.Type)
}
