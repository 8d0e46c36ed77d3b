package speech

// FeedbackType classifies how close the player's attempt was.
type FeedbackType string

const (
	FeedbackSuccess   FeedbackType = "success"
	FeedbackPartial   FeedbackType = "partial"
	FeedbackIncorrect FeedbackType = "incorrect"
)

// Feedback is the user-facing verdict on one attempt.
type Feedback struct {
	Type    FeedbackType `json:"type"`
	Message string       `json:"message"`
	Hint    string       `json:"hint,omitempty"`
}
