// Package fusion combines per-modality analysis into one situational
// assessment per chunk.
//
// Fusion is an additive heuristic, not a model call: audio danger weighs
// heaviest, danger keywords in the visual observations add to it, and a
// sustained run of high assessments reinforces escalation. Each chunk also
// receives a sector label from a fixed round-robin rotation.
package fusion

// DangerLevel grades a fused assessment.
type DangerLevel string

const (
	DangerLow    DangerLevel = "low"
	DangerMedium DangerLevel = "medium"
	DangerHigh   DangerLevel = "high"
)

// Ordinal ranks levels for trend comparison: low < medium < high.
func (l DangerLevel) Ordinal() int {
	switch l {
	case DangerMedium:
		return 1
	case DangerHigh:
		return 2
	default:
		return 0
	}
}

// Situation is the fused per-chunk assessment. Immutable once created; one
// instance per processed chunk, owned by the stream tracker's history after
// creation.
type Situation struct {
	ChunkID            int         `json:"chunk_id"`
	HumansDetected     int         `json:"humans_detected"`
	DangerLevel        DangerLevel `json:"danger_level"`
	Confidence         float64     `json:"confidence"`
	SceneDescription   string      `json:"scene_description"`
	AudioTranscription string      `json:"audio_transcription"`
	KeyObservations    []string    `json:"key_observations"`
	Sector             string      `json:"sector"`
	SafetyStatus       string      `json:"safety_status"`
	Timestamp          float64     `json:"timestamp"`
}
