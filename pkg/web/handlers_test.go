package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/skywatch-uas/go-skywatch/pkg/archive"
	"github.com/skywatch-uas/go-skywatch/pkg/audio"
	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
	"github.com/skywatch-uas/go-skywatch/pkg/inference"
	"github.com/skywatch-uas/go-skywatch/pkg/pipeline"
	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
	"github.com/skywatch-uas/go-skywatch/pkg/stream"
	"github.com/skywatch-uas/go-skywatch/pkg/vision"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func defaultMock() *inference.Mock {
	mock := inference.NewMock()
	mock.VisionFunc = func(ctx context.Context, req *inference.VisionRequest) (*inference.VisionResponse, error) {
		return &inference.VisionResponse{Content: "2: Two people waving from a rooftop."}, nil
	}
	mock.ChatFunc = func(ctx context.Context, req *inference.ChatRequest) (*inference.ChatResponse, error) {
		return &inference.ChatResponse{Message: inference.NewAssistantMessage("NO. Calm voices.")}, nil
	}
	return mock
}

func newTestServer(t *testing.T, mock *inference.Mock, arc *archive.Archive) *Server {
	t.Helper()

	v := vision.NewAnalyzer(mock, vision.DefaultConfig(), testLogger)
	a := audio.NewAnalyzer(mock, audio.DefaultConfig(), testLogger)
	f := fusion.NewFuser(fusion.DefaultConfig(), testLogger)
	tr := stream.NewTracker(stream.DefaultConfig(), testLogger)

	var pipelineArc pipeline.Archiver
	if arc != nil {
		pipelineArc = arc
	}
	orch := pipeline.New(pipeline.DefaultConfig(), v, a, f, tr, pipelineArc, testLogger)
	return NewServer(DefaultConfig(), orch, tr, v, a, arc, testLogger)
}

func chunkBody(t *testing.T, id int, ts float64) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 512, 512)), nil); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	body, err := json.Marshal(protocol.NewChunkData(id, ts, buf.Bytes(), []byte("RIFF fake wav")))
	if err != nil {
		t.Fatalf("marshal chunk: %v", err)
	}
	return bytes.NewReader(body)
}

func postChunk(t *testing.T, s *Server, path string, id int, ts float64) protocol.ChunkResult {
	t.Helper()
	req := httptest.NewRequest("POST", path, chunkBody(t, id, ts))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var result protocol.ChunkResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return result
}

func getJSON(t *testing.T, s *Server, path string, v interface{}) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("GET %s status = %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestReceiveChunk(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	result := postChunk(t, s, "/receive_chunk", 1, 100.0)

	if result.Status != protocol.StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Error)
	}
	if result.ChunkID != 1 {
		t.Errorf("ChunkID = %d, want 1", result.ChunkID)
	}
	if result.Analysis == nil {
		t.Fatal("expected analysis")
	}
	if result.Analysis.HumansDetected != 2 {
		t.Errorf("HumansDetected = %d, want 2", result.Analysis.HumansDetected)
	}
	if result.Analysis.Sector != "A1" {
		t.Errorf("Sector = %q, want A1", result.Analysis.Sector)
	}
	if result.ImageData == "" {
		t.Error("expected annotated image data")
	}
}

func TestReceiveChunkTrailingSlash(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	result := postChunk(t, s, "/receive_chunk/", 1, 100.0)
	if result.Status != protocol.StatusSuccess {
		t.Errorf("expected success on trailing-slash path, got %s", result.Status)
	}
}

func TestReceiveChunkInvalidJSON(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	req := httptest.NewRequest("POST", "/receive_chunk", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestReceiveChunkMissingVideo(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	body, _ := json.Marshal(protocol.ChunkData{ChunkID: 1, Timestamp: 5.0})
	req := httptest.NewRequest("POST", "/receive_chunk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(payload["error"], "video_data") {
		t.Errorf("expected video_data error, got %q", payload["error"])
	}
}

func TestReceiveChunkDefaultsTimestamp(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	result := postChunk(t, s, "/receive_chunk", 1, 0)
	if result.Timestamp <= 0 {
		t.Errorf("expected server-assigned timestamp, got %v", result.Timestamp)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	var payload struct {
		Status string  `json:"status"`
		Uptime float64 `json:"uptime_seconds"`
	}
	getJSON(t, s, "/health", &payload)

	if payload.Status != "healthy" {
		t.Errorf("status = %q, want healthy", payload.Status)
	}
	if payload.Uptime < 0 {
		t.Errorf("uptime = %v, want >= 0", payload.Uptime)
	}
}

func TestStreamStatus(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)
	postChunk(t, s, "/receive_chunk", 1, 100.0)
	postChunk(t, s, "/receive_chunk", 2, 101.0)

	var payload struct {
		Stream  stream.Status `json:"stream"`
		Clients int           `json:"clients_connected"`
	}
	getJSON(t, s, "/stream_status/", &payload)

	if payload.Stream.ChunksTracked != 2 {
		t.Errorf("ChunksTracked = %d, want 2", payload.Stream.ChunksTracked)
	}
	if payload.Stream.LastChunkID != 2 {
		t.Errorf("LastChunkID = %d, want 2", payload.Stream.LastChunkID)
	}
	if payload.Clients != 0 {
		t.Errorf("clients = %d, want 0", payload.Clients)
	}
}

func TestCurrentTrends(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)
	for i := 1; i <= 3; i++ {
		postChunk(t, s, "/receive_chunk", i, 100.0+float64(i))
	}

	var report stream.TrendReport
	getJSON(t, s, "/current_trends/", &report)

	if report.Samples != 3 {
		t.Errorf("Samples = %d, want 3", report.Samples)
	}
	if report.HumanTrend != stream.TrendStable {
		t.Errorf("HumanTrend = %s, want stable", report.HumanTrend)
	}
	if report.DangerCounts[fusion.DangerLow] != 3 {
		t.Errorf("expected 3 low entries, got %v", report.DangerCounts)
	}
}

func TestSituations(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)
	postChunk(t, s, "/receive_chunk", 1, 100.0)
	postChunk(t, s, "/receive_chunk", 2, 101.0)

	var situations []fusion.Situation
	getJSON(t, s, "/situations", &situations)

	if len(situations) != 2 {
		t.Fatalf("expected 2 situations, got %d", len(situations))
	}
	if situations[0].ChunkID != 1 || situations[1].ChunkID != 2 {
		t.Errorf("unexpected order: %d, %d", situations[0].ChunkID, situations[1].ChunkID)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)
	postChunk(t, s, "/receive_chunk", 1, 100.0)

	var payload map[string]json.RawMessage
	getJSON(t, s, "/stats", &payload)

	if _, ok := payload["vision"]; !ok {
		t.Error("expected vision stats")
	}
	if _, ok := payload["audio"]; !ok {
		t.Error("expected audio stats")
	}
	if _, ok := payload["archive_entries"]; ok {
		t.Error("expected no archive_entries without an archive")
	}
}

func TestStatsWithArchive(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "web-archive-test-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	arc, err := archive.New(tmpDir)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	s := newTestServer(t, defaultMock(), arc)
	postChunk(t, s, "/receive_chunk", 1, 100.0)

	var payload struct {
		ArchiveEntries int `json:"archive_entries"`
	}
	getJSON(t, s, "/stats", &payload)

	if payload.ArchiveEntries != 1 {
		t.Errorf("archive_entries = %d, want 1", payload.ArchiveEntries)
	}
}

func TestWSUpgradeRequired(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/ws/live", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 426 {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}

func TestLiveMessagePingPong(t *testing.T) {
	s := newTestServer(t, defaultMock(), nil)

	ping, err := protocol.NewPingMessage("dash-1")
	if err != nil {
		t.Fatalf("build ping: %v", err)
	}
	data, _ := ping.Bytes()

	resp, ok := s.handleLiveMessage(data)
	if !ok {
		t.Fatal("expected pong response")
	}

	msg, err := protocol.ParseMessage(resp)
	if err != nil {
		t.Fatalf("parse pong: %v", err)
	}
	if msg.Type != protocol.TypePong {
		t.Errorf("Type = %s, want pong", msg.Type)
	}
	pong, err := msg.GetPongData()
	if err != nil {
		t.Fatalf("pong data: %v", err)
	}
	if pong.ID != "dash-1" {
		t.Errorf("ID = %q, want dash-1", pong.ID)
	}

	if _, ok := s.handleLiveMessage([]byte("garbage")); ok {
		t.Error("expected garbage to be ignored")
	}
}
