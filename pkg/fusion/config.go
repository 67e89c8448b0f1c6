package fusion

import "github.com/skywatch-uas/go-skywatch/pkg/lexicon"

// Config holds tunable parameters for situation fusion.
type Config struct {
	// Sectors is the ordered label rotation; one label is consumed per
	// chunk, wrapping at the end.
	Sectors []string

	// DangerKeywords mark a visual observation as dangerous.
	DangerKeywords []string
}

// DefaultConfig returns the standard six-sector sweep and the shared danger
// keyword set.
func DefaultConfig() Config {
	return Config{
		Sectors:        []string{"A1", "A2", "B1", "B2", "C1", "C2"},
		DangerKeywords: lexicon.DangerKeywords,
	}
}
