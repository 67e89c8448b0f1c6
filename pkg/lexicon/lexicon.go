// Package lexicon holds the fixed word sets and text heuristics shared by
// the detection, audio, and fusion stages. Confidence is estimated purely
// from lexical hedging in capability responses, never from an external
// score, so the sets live in one place and every consumer sees the same
// vocabulary.
package lexicon

import "strings"

// Multiplicative confidence discounts applied per matching set.
const (
	HedgeDiscount         = 0.7
	LowVisibilityDiscount = 0.8
)

// HedgeWords mark uncertain language in a capability response.
var HedgeWords = []string{"maybe", "possibly", "unclear", "might"}

// LowVisibilityPhrases mark degraded visual or audio conditions.
var LowVisibilityPhrases = []string{"difficult to see", "partially visible"}

// DangerKeywords flag a description as reporting an unsafe situation.
var DangerKeywords = []string{"risk", "hazard", "danger", "unsafe", "injured", "trapped"}

// ContainsAny reports whether text contains any of the given words,
// case-insensitively.
func ContainsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Discount computes a confidence score for a response text. The score
// starts at 1.0 and is discounted once per matching set; the discounts
// compose multiplicatively and independently.
func Discount(text string, hedgeWords, lowVisibility []string) float64 {
	confidence := 1.0
	if ContainsAny(text, hedgeWords) {
		confidence *= HedgeDiscount
	}
	if ContainsAny(text, lowVisibility) {
		confidence *= LowVisibilityDiscount
	}
	return confidence
}
