package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skywatch-uas/go-skywatch/pkg/inference"
	"github.com/skywatch-uas/go-skywatch/pkg/lexicon"
)

// DefaultPrompt is the instruction sent with every tile. The model is asked
// to lead with a count so the reply parses as "<count>: <description>".
const DefaultPrompt = `As a search-and-rescue specialist, analyze this image segment.
First state the number of people visible, then describe their conditions and positions.
Include any immediate risks or hazards.
Format: [Number]: [Brief description of people and risks]
Example: "2: Two rescuers on damaged roof, one with safety equipment. Risk of structural collapse."
Also assess if the detected humans are in a SAFE or UNSAFE situation.`

// Analyzer runs tiled human detection over video frames.
type Analyzer struct {
	provider inference.Provider
	cfg      Config
	logger   *slog.Logger
	stats    *Stats
}

// NewAnalyzer creates an analyzer backed by the given inference provider.
func NewAnalyzer(provider inference.Provider, cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With("component", "vision"),
		stats:    NewStats(),
	}
}

// Stats returns the analyzer's cumulative processing counters.
func (a *Analyzer) Stats() *Stats {
	return a.stats
}

// AnalyzeFrame decodes one video frame and runs the full tiled pipeline:
// shrink, segment, analyze tiles across the worker pool, aggregate.
// Failures are reported inside the Summary, never as a Go error; one bad
// frame must not take down the stream.
func (a *Analyzer) AnalyzeFrame(ctx context.Context, frame []byte) Summary {
	start := time.Now()

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		a.logger.Error("frame decode failed", "error", err)
		return Summary{
			ConfidenceLevel: ConfidenceLow,
			Err:             fmt.Sprintf("decode frame: %v", err),
		}
	}

	img = shrink(img, a.cfg.MaxDimension)
	segments := Segments(img, a.cfg)
	a.logger.Info("analyzing frame", "segments", len(segments), "workers", a.cfg.Workers)

	summary := Aggregate(a.analyzeAll(ctx, segments))

	a.stats.Update(summary.HumanCount, time.Since(start))
	return summary
}

// analyzeAll fans tile analysis out over a fixed worker pool. Each result
// lands in a slice cell owned by its tile, so arrival order never affects
// aggregation.
func (a *Analyzer) analyzeAll(ctx context.Context, segments []Segment) []SegmentResult {
	results := make([]SegmentResult, len(segments))

	workers := a.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = a.analyzeSegment(ctx, segments[i])
			}
		}()
	}

	for i := range segments {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// analyzeSegment sends one tile to the detection model and parses the reply.
// An invocation failure, panics included, becomes a zero-confidence UNKNOWN
// result; it must not abort the frame.
func (a *Analyzer) analyzeSegment(ctx context.Context, seg Segment) (result SegmentResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("segment analysis panicked", "segment", seg.Index, "panic", r)
			result = SegmentResult{
				Box:     seg.Box,
				RawText: fmt.Sprintf("Error: panic: %v", r),
				Safety:  SafetyUnknown,
			}
		}
	}()

	resp, err := a.provider.Vision(ctx, &inference.VisionRequest{
		Image:       seg.Image,
		Prompt:      fmt.Sprintf("Segment %d: %s", seg.Index, a.cfg.Prompt),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		a.logger.Error("segment analysis failed", "segment", seg.Index, "error", err)
		return SegmentResult{
			Box:     seg.Box,
			RawText: fmt.Sprintf("Error: %v", err),
			Safety:  SafetyUnknown,
		}
	}

	count, detail, confidence := parseAnalysis(resp.Content)

	safety := SafetySafe
	if lexicon.ContainsAny(resp.Content, lexicon.DangerKeywords) {
		safety = SafetyUnsafe
	}

	return SegmentResult{
		Box:        seg.Box,
		RawText:    resp.Content,
		HumanCount: count,
		Detail:     detail,
		Confidence: confidence,
		Safety:     safety,
	}
}

// parseAnalysis splits a "<count>: <description>" reply on the first colon.
// A reply that does not match the contract yields count zero with the raw
// text as detail at half confidence; malformed model output is expected and
// recoverable, never fatal.
func parseAnalysis(text string) (int, string, float64) {
	left, right, found := strings.Cut(text, ":")
	if !found {
		return 0, text, 0.5
	}

	count, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || count < 0 {
		return 0, text, 0.5
	}

	detail := strings.TrimSpace(right)
	return count, detail, lexicon.Discount(detail, lexicon.HedgeWords, lexicon.LowVisibilityPhrases)
}
