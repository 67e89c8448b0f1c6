package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "result message",
			msgType: TypeResult,
			data:    ChunkResult{ChunkID: 1, Status: StatusSuccess},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if msg == nil && !tt.wantErr {
				t.Error("NewMessage() returned nil message")
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestChunkDataRoundTrip(t *testing.T) {
	video := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10} // Fake JPEG header
	audioBytes := []byte("RIFF fake wav")

	data := NewChunkData(7, 1700000000.5, video, audioBytes)
	if data.ChunkID != 7 {
		t.Errorf("ChunkID = %v, want 7", data.ChunkID)
	}

	// Through JSON, as a relay would send it.
	body, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var received ChunkData
	if err := json.Unmarshal(body, &received); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	chunk, err := received.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if chunk.ChunkID != 7 {
		t.Errorf("ChunkID = %v, want 7", chunk.ChunkID)
	}
	if chunk.Timestamp != 1700000000.5 {
		t.Errorf("Timestamp = %v, want 1700000000.5", chunk.Timestamp)
	}
	if len(chunk.Video) != len(video) {
		t.Errorf("Video length = %v, want %v", len(chunk.Video), len(video))
	}
	if string(chunk.Audio) != string(audioBytes) {
		t.Errorf("Audio = %q, want %q", chunk.Audio, audioBytes)
	}
}

func TestChunkDataDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    ChunkData
		wantErr bool
	}{
		{
			name:    "missing video",
			data:    ChunkData{ChunkID: 1, AudioData: base64.StdEncoding.EncodeToString([]byte("a"))},
			wantErr: true,
		},
		{
			name:    "invalid video base64",
			data:    ChunkData{ChunkID: 1, VideoData: "not base64!!!"},
			wantErr: true,
		},
		{
			name:    "invalid audio base64",
			data:    ChunkData{ChunkID: 1, VideoData: base64.StdEncoding.EncodeToString([]byte("v")), AudioData: "???"},
			wantErr: true,
		},
		{
			name:    "audio omitted",
			data:    ChunkData{ChunkID: 1, VideoData: base64.StdEncoding.EncodeToString([]byte("v"))},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, err := tt.data.Decode()
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && chunk == nil {
				t.Error("Decode() returned nil chunk")
			}
		})
	}
}

func TestResultMessageRoundTrip(t *testing.T) {
	result := ChunkResult{
		ChunkID:        12,
		Timestamp:      1700000012.0,
		ProcessingTime: 1.25,
		Status:         StatusSuccess,
		Analysis: &fusion.Situation{
			ChunkID:         12,
			HumansDetected:  3,
			DangerLevel:     fusion.DangerMedium,
			SafetyStatus:    "UNSAFE",
			Sector:          "B1",
			KeyObservations: []string{"3: Three people near the ridge"},
		},
	}

	msg, err := NewResultMessage(result)
	if err != nil {
		t.Fatalf("NewResultMessage() error = %v", err)
	}
	if msg.Type != TypeResult {
		t.Errorf("Type = %v, want %v", msg.Type, TypeResult)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	got, err := parsed.GetChunkResult()
	if err != nil {
		t.Fatalf("GetChunkResult() error = %v", err)
	}
	if got.ChunkID != 12 {
		t.Errorf("ChunkID = %v, want 12", got.ChunkID)
	}
	if got.Analysis == nil {
		t.Fatal("Analysis should not be nil")
	}
	if got.Analysis.DangerLevel != fusion.DangerMedium {
		t.Errorf("DangerLevel = %v, want medium", got.Analysis.DangerLevel)
	}
	if got.Analysis.Sector != "B1" {
		t.Errorf("Sector = %v, want B1", got.Analysis.Sector)
	}
}

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult(3, 99.5, errors.New("vision provider unreachable"))

	if result.Status != StatusError {
		t.Errorf("Status = %v, want %v", result.Status, StatusError)
	}
	if result.ChunkID != 3 {
		t.Errorf("ChunkID = %v, want 3", result.ChunkID)
	}
	if result.Error != "vision provider unreachable" {
		t.Errorf("Error = %q", result.Error)
	}
	if result.Analysis != nil {
		t.Error("error result should carry no analysis")
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage("test-123")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	if pingMsg.Type != TypePing {
		t.Errorf("Type = %v, want %v", pingMsg.Type, TypePing)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}

	if pingData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pingData.ID)
	}

	// Create pong response
	now := time.Now().UnixMilli()
	pongMsg, err := NewPongMessage("test-123", pingMsg.Timestamp, now)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}

	if pongMsg.Type != TypePong {
		t.Errorf("Type = %v, want %v", pongMsg.Type, TypePong)
	}

	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}

	if pongData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pongData.ID)
	}
	if pongData.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, should be >= 0", pongData.LatencyMs)
	}
}

func TestParseInvalidMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "invalid json",
			input:   "not json",
			wantErr: true,
		},
		{
			name:    "empty json",
			input:   "{}",
			wantErr: false, // Empty is valid, just no type
		},
		{
			name:    "valid message",
			input:   `{"type":"ping","ts":1234567890}`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageJSON(t *testing.T) {
	// Verify JSON structure matches what dashboard clients expect
	msg, _ := NewResultMessage(ChunkResult{
		ChunkID: 4,
		Status:  StatusSuccess,
		Analysis: &fusion.Situation{
			ChunkID:        4,
			HumansDetected: 2,
			DangerLevel:    fusion.DangerLow,
			SafetyStatus:   "SAFE",
		},
	})

	bytes, _ := msg.Bytes()

	var parsed map[string]interface{}
	if err := json.Unmarshal(bytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal as map: %v", err)
	}

	if parsed["type"] != "result" {
		t.Errorf("type = %v, want result", parsed["type"])
	}

	data, ok := parsed["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data field should be an object")
	}
	analysis, ok := data["current_analysis"].(map[string]interface{})
	if !ok {
		t.Fatal("current_analysis field should be an object")
	}
	if analysis["humans_detected"] != float64(2) {
		t.Errorf("humans_detected = %v, want 2", analysis["humans_detected"])
	}
	if analysis["safety_status"] != "SAFE" {
		t.Errorf("safety_status = %v, want SAFE", analysis["safety_status"])
	}
}

func BenchmarkNewResultMessage(b *testing.B) {
	result := ChunkResult{
		ChunkID:   1,
		Status:    StatusSuccess,
		ImageData: base64.StdEncoding.EncodeToString(make([]byte, 100*1024)),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewResultMessage(result)
	}
}

func BenchmarkParseMessage(b *testing.B) {
	msg, _ := NewResultMessage(ChunkResult{
		ChunkID:   1,
		Status:    StatusSuccess,
		ImageData: base64.StdEncoding.EncodeToString(make([]byte, 100*1024)),
	})
	bytes, _ := msg.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseMessage(bytes)
	}
}
