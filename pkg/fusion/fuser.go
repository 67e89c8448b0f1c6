package fusion

import (
	"log/slog"
	"sync"
	"time"

	"github.com/skywatch-uas/go-skywatch/pkg/audio"
	"github.com/skywatch-uas/go-skywatch/pkg/lexicon"
	"github.com/skywatch-uas/go-skywatch/pkg/vision"
)

// Fallback texts when a modality produced nothing usable.
const (
	noSceneDescription = "No visual description available"
	noTranscription    = "No audio transcription available"
)

// Fuser merges detection and audio results into situational assessments.
// It owns the rotating sector index; everything else it computes is pure.
type Fuser struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	sectorIndex int
}

// NewFuser creates a fuser with its sector rotation at the first label.
func NewFuser(cfg Config, logger *slog.Logger) *Fuser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fuser{
		cfg:    cfg,
		logger: logger.With("component", "fusion"),
	}
}

// NextSector advances the rotation by exactly one position and returns the
// consumed label. Every chunk consumes a slot, whether or not its analysis
// succeeds, so the sweep pattern stays aligned with the chunk sequence.
func (f *Fuser) NextSector() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.cfg.Sectors) == 0 {
		return ""
	}
	sector := f.cfg.Sectors[f.sectorIndex]
	f.sectorIndex = (f.sectorIndex + 1) % len(f.cfg.Sectors)
	return sector
}

// Fuse combines one chunk's detection summary and audio result with the
// recent danger history into a single assessment. recentLevels holds the
// danger levels of prior chunks, oldest first.
func (f *Fuser) Fuse(chunkID int, det vision.Summary, aud audio.Result, recentLevels []DangerLevel, sector string) Situation {
	level := f.assessDanger(det, aud, recentLevels)

	safety := "UNSAFE"
	if level == DangerLow {
		safety = "SAFE"
	}

	observations := make([]string, 0, len(det.KeyObservations)+1)
	observations = append(observations, det.KeyObservations...)
	if aud.RiskText != "" {
		observations = append(observations, "Audio Analysis: "+aud.RiskText)
	}

	scene := det.SceneDescription
	if scene == "" {
		scene = noSceneDescription
	}
	transcription := aud.Transcription
	if transcription == "" {
		transcription = noTranscription
	}

	situation := Situation{
		ChunkID:            chunkID,
		HumansDetected:     det.HumanCount,
		DangerLevel:        level,
		Confidence:         (levelToFloat(det.ConfidenceLevel) + aud.Confidence) / 2,
		SceneDescription:   scene,
		AudioTranscription: transcription,
		KeyObservations:    observations,
		Sector:             sector,
		SafetyStatus:       safety,
		Timestamp:          float64(time.Now().UnixNano()) / float64(time.Second),
	}

	f.logger.Info("situation fused",
		"chunk_id", chunkID,
		"danger_level", level,
		"humans", det.HumanCount,
		"sector", sector,
	)
	return situation
}

// assessDanger computes the additive danger score and maps it to a level.
// Only the detection observations are scanned for keywords; the audio line
// is appended to the observation list after scoring and must not re-count
// the same signal the +2 already covers.
func (f *Fuser) assessDanger(det vision.Summary, aud audio.Result, recentLevels []DangerLevel) DangerLevel {
	score := 0

	if aud.DangerDetected {
		score += 2
	}

	for _, obs := range det.KeyObservations {
		if lexicon.ContainsAny(obs, f.cfg.DangerKeywords) {
			score++
		}
	}

	if n := len(recentLevels); n >= 3 {
		if recentLevels[n-1] == DangerHigh && recentLevels[n-2] == DangerHigh && recentLevels[n-3] == DangerHigh {
			score++
		}
	}

	switch {
	case score >= 3:
		return DangerHigh
	case score >= 1:
		return DangerMedium
	default:
		return DangerLow
	}
}

// levelToFloat maps a detection confidence bucket to a numeric midpoint.
func levelToFloat(level vision.ConfidenceLevel) float64 {
	switch level {
	case vision.ConfidenceLow:
		return 0.3
	case vision.ConfidenceMedium:
		return 0.6
	case vision.ConfidenceHigh:
		return 0.9
	default:
		return 0.5
	}
}
