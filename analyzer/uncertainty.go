package analyzer

import "strings"

// UncertaintyScorer estimates how ambiguous a request is, in [0, 1]. Scores
// above the analyzer's threshold force a clarification pause before
// execution regardless of the model's claimed confidence.
type UncertaintyScorer interface {
	Score(request string) float64
}

// vagueKeywords signal that the user has not pinned down what they want.
var vagueKeywords = []string{
	"maybe",
	"somehow",
	"something",
	"whatever",
	"not sure",
	"i think",
	"some kind",
	"etc",
	"stuff",
	"things",
}

// KeywordScorer is the default UncertaintyScorer: a deterministic heuristic
// over vague phrasing, question marks and request length.
type KeywordScorer struct {
	keywords []string
}

// NewKeywordScorer creates a scorer with the default keyword list.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{keywords: append([]string{}, vagueKeywords...)}
}

// Score implements UncertaintyScorer.
func (s *KeywordScorer) Score(request string) float64 {
	trimmed := strings.TrimSpace(request)
	if trimmed == "" {
		return 1
	}

	lower := strings.ToLower(trimmed)
	score := 0.0

	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			score += 0.25
		}
	}

	// A request that is itself a question needs an answer before a plan.
	if strings.Contains(trimmed, "?") {
		score += 0.25
	}

	// Very short requests rarely carry enough signal to plan from.
	if len(strings.Fields(trimmed)) < 3 {
		score += 0.35
	}

	if score > 1 {
		score = 1
	}
	return score
}
