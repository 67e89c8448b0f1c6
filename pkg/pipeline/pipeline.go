// Package pipeline orchestrates the per-chunk processing flow: continuity
// tracking, parallel vision and audio analysis, fusion, and history
// recording. One orchestrator serves the whole stream; per-chunk failures
// are converted into error results so the stream keeps flowing.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skywatch-uas/go-skywatch/pkg/audio"
	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
	"github.com/skywatch-uas/go-skywatch/pkg/stream"
	"github.com/skywatch-uas/go-skywatch/pkg/vision"
)

// Archiver persists the artifacts of a processed chunk. Implementations
// must be safe for concurrent use.
type Archiver interface {
	Save(result protocol.ChunkResult, annotated []byte) error
}

// Orchestrator runs the per-chunk pipeline against a shared tracker and
// fuser, so sector rotation and trend history span the whole stream.
type Orchestrator struct {
	cfg     Config
	vision  *vision.Analyzer
	audio   *audio.Analyzer
	fuser   *fusion.Fuser
	tracker *stream.Tracker
	archive Archiver
	logger  *slog.Logger
}

// New creates an orchestrator. The archiver may be nil to disable
// archiving.
func New(cfg Config, v *vision.Analyzer, aud *audio.Analyzer, fus *fusion.Fuser, tr *stream.Tracker, arc Archiver, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:     cfg,
		vision:  v,
		audio:   aud,
		fuser:   fus,
		tracker: tr,
		archive: arc,
		logger:  logger.With("component", "pipeline"),
	}
}

// ProcessChunk runs one chunk through the full pipeline and returns its
// result. A panic in any stage becomes an error result; the tracker has
// already registered the chunk by then, so continuity checks and the
// sector rotation stay aligned with the stream even across failures.
func (o *Orchestrator) ProcessChunk(ctx context.Context, chunk *protocol.Chunk) (result protocol.ChunkResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("chunk processing panicked", "chunk_id", chunk.ChunkID, "panic", r)
			result = protocol.NewErrorResult(chunk.ChunkID, chunk.Timestamp,
				fmt.Errorf("processing panicked: %v", r))
			result.ProcessingTime = time.Since(start).Seconds()
		}
	}()

	o.tracker.Track(chunk.ChunkID, chunk.Timestamp)

	// Every chunk consumes a sector slot, failed ones included, so the
	// scan pattern stays in step with the chunk cadence.
	sector := o.fuser.NextSector()

	var (
		wg        sync.WaitGroup
		det       vision.Summary
		aud       audio.Result
		visionErr error
		audioErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				visionErr = fmt.Errorf("vision stage panicked: %v", r)
			}
		}()
		det = o.vision.AnalyzeFrame(ctx, chunk.Video)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				audioErr = fmt.Errorf("audio stage panicked: %v", r)
			}
		}()
		aud = o.audio.AnalyzeChunk(ctx, chunk.Audio)
	}()
	wg.Wait()

	if err := errors.Join(visionErr, audioErr); err != nil {
		o.logger.Error("chunk processing failed", "chunk_id", chunk.ChunkID, "error", err)
		result = protocol.NewErrorResult(chunk.ChunkID, chunk.Timestamp, err)
		result.ProcessingTime = time.Since(start).Seconds()
		return result
	}

	situation := o.fuser.Fuse(chunk.ChunkID, det, aud, o.tracker.LastDangerLevels(3), sector)
	o.tracker.Record(situation)

	result = protocol.ChunkResult{
		ChunkID:   chunk.ChunkID,
		Timestamp: chunk.Timestamp,
		Status:    protocol.StatusSuccess,
		Analysis:  &situation,
	}

	var annotated []byte
	if o.cfg.Annotate {
		data, err := o.vision.Annotate(chunk.Video, det.PerSegment)
		if err != nil {
			o.logger.Warn("frame annotation failed", "chunk_id", chunk.ChunkID, "error", err)
		} else {
			annotated = data
			result.ImageData = base64.StdEncoding.EncodeToString(annotated)
		}
	}

	vs := o.vision.Stats().Snapshot()
	as := o.audio.Stats().Snapshot()
	result.VisionStats = &vs
	result.AudioStats = &as
	result.ProcessingTime = time.Since(start).Seconds()

	if o.archive != nil {
		if err := o.archive.Save(result, annotated); err != nil {
			o.logger.Warn("chunk archive failed", "chunk_id", chunk.ChunkID, "error", err)
		}
	}

	o.logger.Info("chunk processed",
		"chunk_id", chunk.ChunkID,
		"humans", situation.HumansDetected,
		"danger_level", situation.DangerLevel,
		"sector", sector,
		"processing_time", result.ProcessingTime)
	return result
}
