package speech

// Evaluation is the result of scoring a transcript against a response's
// accepted phrases. Matched and Similarity are always set. The remaining
// fields are produced only by premium evaluators; the free tier leaves them
// absent rather than zeroed, which the pointer types and omitempty preserve
// over the wire.
type Evaluation struct {
	Matched    bool    `json:"matched"`
	Similarity float64 `json:"similarity"`
	BestMatch  string  `json:"bestMatch,omitempty"`

	SemanticMatch      *bool    `json:"semanticMatch,omitempty"`
	PronunciationScore *float64 `json:"pronunciationScore,omitempty"`
	GrammarCorrect     *bool    `json:"grammarCorrect,omitempty"`
	Corrections        []string `json:"corrections,omitempty"`
	Feedback           string   `json:"feedback,omitempty"`
}
