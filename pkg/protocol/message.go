// Package protocol defines the wire types for chunk ingest and result
// delivery. This package is shared between the fusion server, the field
// relay, and live dashboard clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/skywatch-uas/go-skywatch/pkg/audio"
	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
	"github.com/skywatch-uas/go-skywatch/pkg/vision"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Server → Dashboard messages
	TypeResult MessageType = "result" // Fused analysis of one chunk

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Ingest types
// =============================================================================

// ChunkData is the JSON body a relay posts for one recorded chunk. Media
// fields are base64 encoded.
type ChunkData struct {
	ChunkID   int     `json:"chunk_id"`
	Timestamp float64 `json:"timestamp"` // Unix seconds at capture
	VideoData string  `json:"video_data"`
	AudioData string  `json:"audio_data,omitempty"`
}

// Chunk is a decoded chunk ready for processing.
type Chunk struct {
	ChunkID   int
	Timestamp float64
	Video     []byte
	Audio     []byte
}

// =============================================================================
// Result types
// =============================================================================

// Result processing status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ChunkResult is the server's response for one processed chunk and the
// payload broadcast to live dashboards.
type ChunkResult struct {
	ChunkID        int     `json:"chunk_id"`
	Timestamp      float64 `json:"timestamp"`
	ProcessingTime float64 `json:"processing_time"` // Seconds
	Status         string  `json:"status"`

	Analysis    *fusion.Situation     `json:"current_analysis,omitempty"`
	VisionStats *vision.StatsSnapshot `json:"vision_stats,omitempty"`
	AudioStats  *audio.StatsSnapshot  `json:"audio_stats,omitempty"`

	// ImageData carries the annotated frame as base64 JPEG when
	// annotation is enabled.
	ImageData string `json:"image_data,omitempty"`

	Error string `json:"error,omitempty"`
}

// =============================================================================
// Bidirectional message types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
