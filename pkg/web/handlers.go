package web

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
)

// handleReceiveChunk ingests one chunk, runs the pipeline synchronously,
// broadcasts the result to live dashboards, and returns it. Processing
// failures come back as error results with a 200; only malformed
// payloads are rejected.
func (s *Server) handleReceiveChunk(c *fiber.Ctx) error {
	var data protocol.ChunkData
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid chunk payload: " + err.Error(),
		})
	}

	chunk, err := data.Decode()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Relays that cannot timestamp leave it zero; fall back to arrival
	// time so gap detection keeps working.
	if chunk.Timestamp == 0 {
		chunk.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}

	result := s.orch.ProcessChunk(c.UserContext(), chunk)

	s.lastMu.Lock()
	s.lastResult = &result
	s.lastMu.Unlock()

	if encoded, err := encodeResult(result); err == nil {
		s.live.Broadcast(encoded)
	}

	return c.JSON(result)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "healthy",
		"uptime_seconds": time.Since(s.started).Seconds(),
	})
}

// handleStreamStatus reports continuity counters and connected clients.
func (s *Server) handleStreamStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"stream":            s.tracker.Status(),
		"clients_connected": s.live.ClientCount(),
	})
}

// handleCurrentTrends reports directional trends plus historical
// statistics.
func (s *Server) handleCurrentTrends(c *fiber.Ctx) error {
	return c.JSON(s.tracker.Trends())
}

// handleSituations returns the recent situation window, oldest first.
func (s *Server) handleSituations(c *fiber.Ctx) error {
	return c.JSON(s.tracker.Recent())
}

// handleStats reports per-stage processing statistics.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats := fiber.Map{
		"vision": s.vision.Stats().Snapshot(),
		"audio":  s.audio.Stats().Snapshot(),
	}
	if s.arc != nil {
		stats["archive_entries"] = s.arc.Count()
	}
	return c.JSON(stats)
}
