package stream

// Config controls tracker history sizes and the timing-gap threshold.
type Config struct {
	// WindowSize is the number of recent situations retained for
	// window-based trend queries.
	WindowSize int

	// TrendCap bounds the per-metric trend histories used for
	// historical statistics.
	TrendCap int

	// GapSeconds is the spacing between consecutive chunk timestamps
	// above which a timing gap is reported.
	GapSeconds float64
}

// DefaultConfig returns the tracker defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize: 10,
		TrendCap:   100,
		GapSeconds: 2.0,
	}
}
