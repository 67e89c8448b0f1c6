package vision

// Config holds all tunable parameters for the tiled detection pipeline.
type Config struct {
	// Tiling
	WindowSize  int // tile edge length in pixels
	Stride      int // scan step; adjacent tiles overlap by WindowSize-Stride
	MinTileSize int // clamped edge tiles narrower than this are skipped

	// Scheduling
	Workers int // fixed pool size for per-tile model calls

	// Preprocessing
	MaxDimension int // frames larger than this on either axis are scaled down

	// Model
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the tuning used for drone search footage.
func DefaultConfig() Config {
	return Config{
		WindowSize:   512,
		Stride:       384,
		MinTileSize:  256,
		Workers:      4,
		MaxDimension: 800,
		Prompt:       DefaultPrompt,
		MaxTokens:    200,
		Temperature:  0.3,
	}
}
