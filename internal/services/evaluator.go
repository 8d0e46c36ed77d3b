package services

import (
	"context"

	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// ResponseEvaluator defines the interface for scoring player input against a
// response's accepted phrases. Implementations may be network-backed, so
// Evaluate takes a context and returns an error; callers must degrade a
// failed evaluation to not-matched rather than abort the conversation.
type ResponseEvaluator interface {
	// Evaluate scores input against the accepted phrases. It must be
	// deterministic for identical inputs on the free tier.
	Evaluate(ctx context.Context, input string, acceptedPhrases []string, dc *speech.Context) (*speech.Evaluation, error)

	// SimilarityThreshold is the minimum similarity considered a match.
	SimilarityThreshold() float64
}
