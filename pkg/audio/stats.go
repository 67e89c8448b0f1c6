package audio

import (
	"sync"
	"time"
)

// statsWindow bounds the rolling sample of processing durations.
const statsWindow = 100

// Stats tracks cumulative audio-processing counters. Safe for concurrent use.
type Stats struct {
	mu              sync.Mutex
	chunksProcessed int
	dangersDetected int
	lastProcessed   time.Time
	durations       []time.Duration
}

// NewStats creates an empty counter set.
func NewStats() *Stats {
	return &Stats{}
}

// Update records one processed audio chunk.
func (s *Stats) Update(danger bool, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunksProcessed++
	if danger {
		s.dangersDetected++
	}
	s.lastProcessed = time.Now()

	s.durations = append(s.durations, d)
	if len(s.durations) > statsWindow {
		s.durations = s.durations[1:]
	}
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	ChunksProcessed int     `json:"total_audio_processed"`
	DangersDetected int     `json:"total_dangers_detected"`
	AverageTime     float64 `json:"average_processing_time"`
	LastProcessed   float64 `json:"last_processed"`
}

// Snapshot returns the current counters. The average covers the most recent
// samples only, bounded by the rolling window.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		ChunksProcessed: s.chunksProcessed,
		DangersDetected: s.dangersDetected,
	}
	if !s.lastProcessed.IsZero() {
		snap.LastProcessed = float64(s.lastProcessed.UnixNano()) / float64(time.Second)
	}
	if len(s.durations) > 0 {
		var total time.Duration
		for _, d := range s.durations {
			total += d
		}
		snap.AverageTime = (total / time.Duration(len(s.durations))).Seconds()
	}
	return snap
}
