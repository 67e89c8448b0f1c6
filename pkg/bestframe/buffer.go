package bestframe

import (
	"log/slog"
	"sync"
)

// maxFrames bounds the per-chunk burst; a stalled upstream clock must
// not grow the buffer forever.
const maxFrames = 120

// Best describes the selected frame of a completed chunk.
type Best struct {
	ChunkID   int
	Timestamp float64
	Frame     []byte
	Score     float64
	Frames    int // frames considered
}

// Buffer accumulates the frames of the current chunk and emits the best
// one when the next chunk begins. Safe for concurrent use.
type Buffer struct {
	scorer Scorer
	logger *slog.Logger

	mu        sync.Mutex
	chunkID   int
	chunkTime float64
	frames    [][]byte
	active    bool
}

// NewBuffer creates a buffer using the given scorer.
func NewBuffer(scorer Scorer, logger *slog.Logger) *Buffer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Buffer{
		scorer: scorer,
		logger: logger.With("component", "bestframe"),
	}
}

// Add appends a frame to the chunk identified by chunkID. A frame with a
// different chunk id completes the current chunk: its best frame is
// returned and the buffer starts collecting the new chunk.
func (b *Buffer) Add(chunkID int, timestamp float64, frame []byte) (*Best, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var best *Best
	if b.active && chunkID != b.chunkID {
		best = b.selectBest()
	}

	if !b.active || chunkID != b.chunkID {
		b.chunkID = chunkID
		b.chunkTime = timestamp
		b.frames = b.frames[:0]
		b.active = true
	}

	if len(b.frames) >= maxFrames {
		b.logger.Warn("frame buffer full, dropping frame", "chunk_id", chunkID)
		return best, best != nil
	}
	b.frames = append(b.frames, frame)

	return best, best != nil
}

// Flush completes the current chunk, if any, and returns its best frame.
func (b *Buffer) Flush() (*Best, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active || len(b.frames) == 0 {
		return nil, false
	}
	best := b.selectBest()
	b.frames = b.frames[:0]
	b.active = false
	return best, best != nil
}

// selectBest scores every buffered frame and returns the winner. Frames
// the scorer rejects are skipped; if none score, the final frame is
// returned with a zero score. Caller holds the lock.
func (b *Buffer) selectBest() *Best {
	if len(b.frames) == 0 {
		return nil
	}

	bestIdx := -1
	bestScore := 0.0
	for i, frame := range b.frames {
		score, err := b.scorer.Score(frame)
		if err != nil {
			b.logger.Warn("frame scoring failed", "chunk_id", b.chunkID, "frame", i, "error", err)
			continue
		}
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx < 0 {
		bestIdx = len(b.frames) - 1
		bestScore = 0
	}

	return &Best{
		ChunkID:   b.chunkID,
		Timestamp: b.chunkTime,
		Frame:     b.frames[bestIdx],
		Score:     bestScore,
		Frames:    len(b.frames),
	}
}
