// Package vision implements tiled human detection over drone video frames.
//
// A frame is split into overlapping tiles, each tile is analyzed
// independently by a vision model, and the per-tile results are merged into
// one frame-level summary. The highest-confidence tile speaks for the whole
// frame: overlapping tiles see the same people, so counts are never summed.
package vision

import (
	"encoding/json"
	"image"
)

// SafetyFlag classifies the assessed risk in one tile.
type SafetyFlag string

const (
	SafetySafe    SafetyFlag = "SAFE"
	SafetyUnsafe  SafetyFlag = "UNSAFE"
	SafetyUnknown SafetyFlag = "UNKNOWN"
)

// ConfidenceLevel buckets a numeric confidence score.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// LevelFor maps a numeric confidence to its bucket.
func LevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.8:
		return ConfidenceHigh
	case confidence >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Box is a pixel-space bounding box from (X0,Y0) to (X1,Y1).
type Box struct {
	X0, Y0, X1, Y1 int
}

// MarshalJSON encodes the box as a [x0,y0,x1,y1] tuple.
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X0, b.Y0, b.X1, b.Y1})
}

// UnmarshalJSON decodes a [x0,y0,x1,y1] tuple.
func (b *Box) UnmarshalJSON(data []byte) error {
	var tuple [4]int
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	b.X0, b.Y0, b.X1, b.Y1 = tuple[0], tuple[1], tuple[2], tuple[3]
	return nil
}

// Segment is one cropped tile of a source frame. Segments are ephemeral:
// produced by the segmenter, consumed by the analyzer, then discarded.
type Segment struct {
	Box   Box
	Image image.Image
	Index int // 1-based, assigned in scan order
}

// SegmentResult is the structured analysis of one tile.
type SegmentResult struct {
	Box        Box        `json:"coordinates"`
	RawText    string     `json:"analysis"`
	HumanCount int        `json:"human_count"`
	Detail     string     `json:"details"`
	Confidence float64    `json:"confidence"`
	Safety     SafetyFlag `json:"safety_status"`
}

// Failed reports whether the tile's model invocation failed. Failed tiles
// carry zero confidence and never win aggregation.
func (r SegmentResult) Failed() bool {
	return r.Safety == SafetyUnknown
}

// Summary is the frame-level detection report.
type Summary struct {
	HumanCount       int             `json:"total_human_count"`
	KeyObservations  []string        `json:"key_details"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	SceneDescription string          `json:"description,omitempty"`
	PerSegment       []SegmentResult `json:"segments"`
	Err              string          `json:"error,omitempty"`
}
