package protocol

import (
	"encoding/base64"
	"fmt"
)

// =============================================================================
// Helper functions for ingest payloads
// =============================================================================

// NewChunkData encodes raw chunk media into an ingest payload.
func NewChunkData(chunkID int, timestamp float64, video, audio []byte) ChunkData {
	data := ChunkData{
		ChunkID:   chunkID,
		Timestamp: timestamp,
		VideoData: base64.StdEncoding.EncodeToString(video),
	}
	if len(audio) > 0 {
		data.AudioData = base64.StdEncoding.EncodeToString(audio)
	}
	return data
}

// Decode validates the payload and decodes the base64 media fields. Video
// is required; audio is optional because a relay may strip it to save
// uplink bandwidth.
func (c *ChunkData) Decode() (*Chunk, error) {
	if c.VideoData == "" {
		return nil, fmt.Errorf("chunk %d: missing video_data", c.ChunkID)
	}
	video, err := base64.StdEncoding.DecodeString(c.VideoData)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: decode video_data: %w", c.ChunkID, err)
	}

	var audioBytes []byte
	if c.AudioData != "" {
		audioBytes, err = base64.StdEncoding.DecodeString(c.AudioData)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: decode audio_data: %w", c.ChunkID, err)
		}
	}

	return &Chunk{
		ChunkID:   c.ChunkID,
		Timestamp: c.Timestamp,
		Video:     video,
		Audio:     audioBytes,
	}, nil
}

// =============================================================================
// Helper functions for results
// =============================================================================

// NewErrorResult builds the result returned when chunk processing fails.
func NewErrorResult(chunkID int, timestamp float64, err error) ChunkResult {
	return ChunkResult{
		ChunkID:   chunkID,
		Timestamp: timestamp,
		Status:    StatusError,
		Error:     err.Error(),
	}
}

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewResultMessage wraps a chunk result for WebSocket broadcast
func NewResultMessage(result ChunkResult) (*Message, error) {
	return NewMessage(TypeResult, result)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetChunkResult extracts a chunk result from a message
func (m *Message) GetChunkResult() (*ChunkResult, error) {
	var data ChunkResult
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
