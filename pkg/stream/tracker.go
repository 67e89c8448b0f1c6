package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
)

// Tracker watches chunk ordering and timing and records fused situations
// for trend analysis. All methods are safe for concurrent use.
type Tracker struct {
	cfg    Config
	logger *slog.Logger

	mu             sync.Mutex
	lastChunkID    int
	lastChunkTime  float64
	chunksTracked  int
	sequenceBreaks int
	timingGaps     int
	startedAt      time.Time

	window      []fusion.Situation
	humanCounts []int
	dangerLog   []fusion.DangerLevel
}

// NewTracker creates a tracker with the given configuration.
func NewTracker(cfg Config, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		cfg:       cfg,
		logger:    logger.With("component", "stream"),
		startedAt: time.Now(),
	}
}

// Track registers an incoming chunk before processing starts. A chunk id
// that does not follow the previous one, or a timestamp more than
// GapSeconds after the previous one, is logged as a warning. The tracker
// then adopts the new id and timestamp regardless, so a single dropped
// chunk does not cascade into warnings for every chunk after it.
func (t *Tracker) Track(chunkID int, timestamp float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.chunksTracked++

	if chunkID != t.lastChunkID+1 {
		t.sequenceBreaks++
		t.logger.Warn("chunk sequence break",
			"chunk_id", chunkID,
			"expected", t.lastChunkID+1)
	}

	// The first chunk has no predecessor to measure a gap against.
	if t.lastChunkTime > 0 {
		if gap := timestamp - t.lastChunkTime; gap > t.cfg.GapSeconds {
			t.timingGaps++
			t.logger.Warn("chunk timing gap",
				"chunk_id", chunkID,
				"gap_seconds", gap)
		}
	}

	t.lastChunkID = chunkID
	t.lastChunkTime = timestamp
}

// Record appends a fused situation to the window and trend histories.
func (t *Tracker) Record(s fusion.Situation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.window = append(t.window, s)
	if len(t.window) > t.cfg.WindowSize {
		t.window = t.window[1:]
	}

	t.humanCounts = append(t.humanCounts, s.HumansDetected)
	if len(t.humanCounts) > t.cfg.TrendCap {
		t.humanCounts = t.humanCounts[1:]
	}

	t.dangerLog = append(t.dangerLog, s.DangerLevel)
	if len(t.dangerLog) > t.cfg.TrendCap {
		t.dangerLog = t.dangerLog[1:]
	}
}

// LastDangerLevels returns up to n of the most recent danger levels,
// oldest first.
func (t *Tracker) LastDangerLevels(n int) []fusion.DangerLevel {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n > len(t.dangerLog) {
		n = len(t.dangerLog)
	}
	if n <= 0 {
		return nil
	}
	out := make([]fusion.DangerLevel, n)
	copy(out, t.dangerLog[len(t.dangerLog)-n:])
	return out
}

// HumanTrend compares the oldest and newest window entries. Fewer than
// two entries is reported as stable.
func (t *Tracker) HumanTrend() Trend {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.humanTrendLocked()
}

func (t *Tracker) humanTrendLocked() Trend {
	if len(t.window) < 2 {
		return TrendStable
	}
	oldest := t.window[0].HumansDetected
	newest := t.window[len(t.window)-1].HumansDetected
	switch {
	case newest > oldest:
		return TrendIncreasing
	case newest < oldest:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// DangerTrend compares the two most recent danger levels by severity.
// Fewer than two recorded situations is reported as stable.
func (t *Tracker) DangerTrend() Trend {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dangerTrendLocked()
}

func (t *Tracker) dangerTrendLocked() Trend {
	if len(t.dangerLog) < 2 {
		return TrendStable
	}
	prev := t.dangerLog[len(t.dangerLog)-2].Ordinal()
	last := t.dangerLog[len(t.dangerLog)-1].Ordinal()
	switch {
	case last > prev:
		return TrendEscalating
	case last < prev:
		return TrendDeescalating
	default:
		return TrendStable
	}
}

// Latest returns the most recently recorded situation.
func (t *Tracker) Latest() (fusion.Situation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.window) == 0 {
		return fusion.Situation{}, false
	}
	return t.window[len(t.window)-1], true
}

// Recent returns a copy of the situation window, oldest first.
func (t *Tracker) Recent() []fusion.Situation {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]fusion.Situation, len(t.window))
	copy(out, t.window)
	return out
}

// Status is a point-in-time snapshot of stream health counters.
type Status struct {
	ChunksTracked  int     `json:"chunks_processed"`
	SequenceBreaks int     `json:"sequence_breaks"`
	TimingGaps     int     `json:"timing_gaps"`
	LastChunkID    int     `json:"last_chunk_id"`
	LastChunkTime  float64 `json:"last_chunk_time"`
	WindowLength   int     `json:"window_length"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// Status reports stream continuity counters.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Status{
		ChunksTracked:  t.chunksTracked,
		SequenceBreaks: t.sequenceBreaks,
		TimingGaps:     t.timingGaps,
		LastChunkID:    t.lastChunkID,
		LastChunkTime:  t.lastChunkTime,
		WindowLength:   len(t.window),
		UptimeSeconds:  time.Since(t.startedAt).Seconds(),
	}
}

// TrendReport summarizes directional trends plus historical statistics
// over the capped trend histories.
type TrendReport struct {
	HumanTrend    Trend                      `json:"human_trend"`
	DangerTrend   Trend                      `json:"danger_trend"`
	AverageHumans float64                    `json:"average_humans_per_chunk"`
	DangerCounts  map[fusion.DangerLevel]int `json:"danger_level_distribution"`
	Samples       int                        `json:"total_situations_analyzed"`
}

// Trends derives the current trend report.
func (t *Tracker) Trends() TrendReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := TrendReport{
		HumanTrend:   t.humanTrendLocked(),
		DangerTrend:  t.dangerTrendLocked(),
		DangerCounts: make(map[fusion.DangerLevel]int),
		Samples:      len(t.dangerLog),
	}
	for _, level := range t.dangerLog {
		report.DangerCounts[level]++
	}
	if len(t.humanCounts) > 0 {
		total := 0
		for _, n := range t.humanCounts {
			total += n
		}
		report.AverageHumans = float64(total) / float64(len(t.humanCounts))
	}
	return report
}
