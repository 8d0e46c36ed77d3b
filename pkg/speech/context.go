package speech

// Exchange is one turn of transcript history. Only premium services record
// it; the free tier never populates Transcript.
type Exchange struct {
	Speaker string `json:"speaker"` // "npc" or "player"
	Text    string `json:"text"`
}

// Context carries the conversational surroundings of an evaluation: who the
// player is talking to, where they are in the tree, and what they already
// know. Premium evaluators may use all of it; the free pattern matcher
// ignores everything but the strings it is given.
type Context struct {
	NPCID          string   `json:"npcId"`
	NPCRole        string   `json:"npcRole,omitempty"`
	CurrentNodeID  string   `json:"currentNodeId,omitempty"`
	NodeHistory    []string `json:"nodeHistory,omitempty"`
	PlayerLevel    int      `json:"playerLevel,omitempty"`
	TargetLanguage string   `json:"targetLanguage,omitempty"`
	KnownWords     []string `json:"knownWords,omitempty"`

	// Transcript is premium-only full conversation history.
	Transcript []Exchange `json:"transcript,omitempty"`
}
