package pipeline

// Config controls per-chunk pipeline behavior.
type Config struct {
	// Annotate attaches the box-annotated frame to successful results.
	// Turning it off roughly halves the result payload size.
	Annotate bool
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Annotate: true,
	}
}
