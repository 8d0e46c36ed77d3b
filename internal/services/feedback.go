package services

import (
	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// FeedbackGenerator turns an evaluation into a user-facing message.
type FeedbackGenerator interface {
	GenerateFeedback(input string, eval *speech.Evaluation, dc *speech.Context) *speech.Feedback
}
