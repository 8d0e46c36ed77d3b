package services

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/linguaquest/dialogue-engine/pkg/speech"
)

// DefaultSimilarityThreshold is the free-tier match cutoff.
const DefaultSimilarityThreshold = 0.5

// PatternEvaluator is the free-tier evaluator: a syntactic approximate
// matcher built on case folding, a substring shortcut, and Levenshtein edit
// distance. It is pure, deterministic, and never returns an error.
type PatternEvaluator struct {
	threshold float64
	folder    cases.Caser
}

var _ ResponseEvaluator = (*PatternEvaluator)(nil)

// NewPatternEvaluator creates a pattern evaluator with the default threshold.
func NewPatternEvaluator() *PatternEvaluator {
	return &PatternEvaluator{
		threshold: DefaultSimilarityThreshold,
		folder:    cases.Fold(),
	}
}

func (e *PatternEvaluator) SimilarityThreshold() float64 {
	return e.threshold
}

// Evaluate keeps the highest-scoring accepted phrase. Empty input or an
// empty accepted set scores 0 and never matches.
func (e *PatternEvaluator) Evaluate(ctx context.Context, input string, acceptedPhrases []string, dc *speech.Context) (*speech.Evaluation, error) {
	eval := &speech.Evaluation{}

	normalized := e.normalize(input)
	if normalized == "" || len(acceptedPhrases) == 0 {
		return eval, nil
	}

	for _, phrase := range acceptedPhrases {
		candidate := e.normalize(phrase)
		if candidate == "" {
			continue
		}
		score := similarity(normalized, candidate)
		if score > eval.Similarity || eval.BestMatch == "" {
			eval.Similarity = score
			eval.BestMatch = phrase
		}
	}

	eval.Matched = eval.Similarity >= e.threshold
	return eval, nil
}

func (e *PatternEvaluator) normalize(s string) string {
	return e.folder.String(strings.TrimSpace(s))
}

// similarity returns normalized [0,1] closeness between two non-empty,
// already-normalized strings. An exact match scores 1. If one string
// contains the other, the score is the length ratio, which rewards
// filler-laden utterances around a correct phrase. Otherwise it is
// 1 - editDistance/maxLen.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter := len(ra) + len(rb) - longer
		return float64(shorter) / float64(longer)
	}

	return 1 - float64(editDistance(ra, rb))/float64(longer)
}

// editDistance is classic dynamic-programming Levenshtein distance with unit
// cost inserts, deletes, and substitutions, over runes.
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
