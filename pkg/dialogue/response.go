package dialogue

// InputType is the input modality a response requires from the player.
type InputType string

const (
	InputSpeak  InputType = "speak"
	InputWrite  InputType = "write"
	InputChoice InputType = "choice"
)

// Response is one answer option on a node. For speak/write responses,
// ExpectedSpeech holds the accepted phrases (matched case-insensitively);
// choice responses are selected directly and never evaluated.
type Response struct {
	ID             string    `json:"id" yaml:"id"`
	Text           string    `json:"text" yaml:"text"`
	ExpectedSpeech []string  `json:"expectedSpeech,omitempty" yaml:"expectedSpeech,omitempty"`
	NextNodeID     string    `json:"nextNodeId" yaml:"nextNodeId"`
	RequiresType   InputType `json:"requiresType" yaml:"requiresType"`
}

// AcceptsTranscript reports whether the response is evaluated against
// spoken or typed input.
func (r *Response) AcceptsTranscript() bool {
	return r.RequiresType == InputSpeak || r.RequiresType == InputWrite
}
