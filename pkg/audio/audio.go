// Package audio turns a chunk's audio segment into a transcription and a
// danger verdict.
//
// The audio path is two model calls: speech-to-text, then a text classifier
// asked for an explicit YES/NO danger call. The classifier's explanation is
// scanned for hedging language to discount the confidence, mirroring the
// vision side's heuristics.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skywatch-uas/go-skywatch/pkg/inference"
	"github.com/skywatch-uas/go-skywatch/pkg/lexicon"
)

// DangerPrompt precedes the transcription in the classification request.
// The phonetic-similarity hint matters: drone audio is noisy and a garbled
// "Hello" is often a "Help".
const DangerPrompt = `Analyze the following text and determine if it signals danger or distress.
Consider words that may be phonetically similar to distress calls.
Example: If the text is 'Hello', it may mean 'Help'.
Respond with 'YES' if there is danger, otherwise respond with 'NO'.
Provide a brief explanation.

Text to analyze:
`

// Result is the structured outcome of one audio chunk.
type Result struct {
	Transcription  string  `json:"transcription"`
	DangerDetected bool    `json:"danger_detected"`
	RiskText       string  `json:"risk_analysis"`
	Confidence     float64 `json:"confidence"`
}

// Config holds tunable parameters for audio analysis.
type Config struct {
	Language    string  // ISO-639-1 hint passed to the transcriber
	Temperature float64 // transcription decoding temperature
	Filename    string  // container hint for the transcription upload
}

// DefaultConfig returns the tuning used for drone radio audio.
func DefaultConfig() Config {
	return Config{
		Language:    "en",
		Temperature: 0.0,
		Filename:    "audio.wav",
	}
}

// Analyzer transcribes audio chunks and classifies them for danger.
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
		logger:   logger.With("component", "audio"),
		stats:    NewStats(),
	}
}

// Stats returns the analyzer's cumulative processing counters.
func (a *Analyzer) Stats() *Stats {
	return a.stats
}

// AnalyzeChunk transcribes one audio segment and classifies the text.
// Failures never propagate: a broken transcription or classification call
// degrades to a no-danger result with zero confidence and an error marker
// in the risk text.
func (a *Analyzer) AnalyzeChunk(ctx context.Context, audio []byte) Result {
	start := time.Now()

	result := a.analyze(ctx, audio)

	a.stats.Update(result.DangerDetected, time.Since(start))
	return result
}

func (a *Analyzer) analyze(ctx context.Context, audio []byte) Result {
	tr, err := a.provider.Transcribe(ctx, &inference.TranscribeRequest{
		Audio:       audio,
		Filename:    a.cfg.Filename,
		Language:    a.cfg.Language,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		a.logger.Error("transcription failed", "error", err)
		return errorResult(err)
	}

	a.logger.Debug("transcription complete", "text", tr.Text)
	return a.classify(ctx, tr.Text)
}

// classify asks the chat model for a danger verdict on the transcription.
func (a *Analyzer) classify(ctx context.Context, transcription string) Result {
	resp, err := a.provider.Chat(ctx, &inference.ChatRequest{
		Messages: []inference.Message{
			inference.NewUserMessage(DangerPrompt + transcription),
		},
	})
	if err != nil {
		a.logger.Error("risk classification failed", "error", err)
		r := errorResult(err)
		r.Transcription = transcription
		return r
	}

	analysis := strings.TrimSpace(resp.Message.Content)

	return Result{
		Transcription:  transcription,
		DangerDetected: strings.Contains(strings.ToUpper(analysis), "YES"),
		RiskText:       analysis,
		Confidence:     lexicon.Discount(analysis, lexicon.HedgeWords, lexicon.LowVisibilityPhrases),
	}
}

func errorResult(err error) Result {
	return Result{
		RiskText:   fmt.Sprintf("error: %v", err),
		Confidence: 0.0,
	}
}
