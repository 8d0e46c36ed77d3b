package services

import (
	"fmt"
	"sync/atomic"

	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// partialCutoff separates "close enough to encourage" from "incorrect".
// It is deliberately looser than the 0.5 match threshold so feedback has
// three tiers of granularity without a separate classifier.
const partialCutoff = 0.3

var affirmations = []string{
	"¡Perfecto! Well said!",
	"¡Muy bien! That's right!",
	"¡Excelente! You got it!",
	"Great job! That's exactly it.",
}

var retryHints = []string{
	"Listen carefully and try repeating the phrase.",
	"Take your time and try again.",
	"Not quite. Give it another go.",
}

// PatternFeedback is the free-tier feedback generator. Messages rotate
// through a fixed set via an internal counter, so the sequence is
// deterministic and still varies between attempts.
type PatternFeedback struct {
	successIdx uint64
	retryIdx   uint64
}

var _ FeedbackGenerator = (*PatternFeedback)(nil)

// NewPatternFeedback creates a free-tier feedback generator.
func NewPatternFeedback() *PatternFeedback {
	return &PatternFeedback{}
}

func (g *PatternFeedback) GenerateFeedback(input string, eval *speech.Evaluation, dc *speech.Context) *speech.Feedback {
	if eval != nil && eval.Matched {
		i := atomic.AddUint64(&g.successIdx, 1) - 1
		return &speech.Feedback{
			Type:    speech.FeedbackSuccess,
			Message: affirmations[i%uint64(len(affirmations))],
		}
	}

	similarity := 0.0
	bestMatch := ""
	if eval != nil {
		similarity = eval.Similarity
		bestMatch = eval.BestMatch
	}

	if similarity > partialCutoff {
		fb := &speech.Feedback{
			Type:    speech.FeedbackPartial,
			Message: "So close! You're almost there.",
		}
		if bestMatch != "" {
			fb.Hint = fmt.Sprintf("Try saying: %q", bestMatch)
		} else {
			fb.Hint = "Listen to the phrase again and repeat it."
		}
		return fb
	}

	fb := &speech.Feedback{
		Type:    speech.FeedbackIncorrect,
		Message: "Not quite what I expected.",
	}
	if bestMatch != "" {
		fb.Hint = fmt.Sprintf("The expected phrase is: %q", bestMatch)
	} else {
		i := atomic.AddUint64(&g.retryIdx, 1) - 1
		fb.Hint = retryHints[i%uint64(len(retryHints))]
	}
	return fb
}
