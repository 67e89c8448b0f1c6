// Package web provides the HTTP ingest API and the live WebSocket feed
// for the fusion server.
package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/skywatch-uas/go-skywatch/pkg/archive"
	"github.com/skywatch-uas/go-skywatch/pkg/audio"
	"github.com/skywatch-uas/go-skywatch/pkg/hub"
	"github.com/skywatch-uas/go-skywatch/pkg/pipeline"
	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
	"github.com/skywatch-uas/go-skywatch/pkg/stream"
	"github.com/skywatch-uas/go-skywatch/pkg/vision"
)

// Config controls the HTTP server.
type Config struct {
	Port string

	// BodyLimit caps the request body size in bytes. Base64-encoded
	// chunks run several times the raw media size.
	BodyLimit int
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Port:      "8000",
		BodyLimit: 32 * 1024 * 1024,
	}
}

// Server is the chunk ingest and dashboard server.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger *slog.Logger

	orch    *pipeline.Orchestrator
	tracker *stream.Tracker
	vision  *vision.Analyzer
	audio   *audio.Analyzer
	arc     *archive.Archive

	// Hub for websocket broadcast (thread-safe!)
	live *hub.Hub

	lastMu     sync.RWMutex
	lastResult *protocol.ChunkResult

	started time.Time
}

// NewServer creates the server and mounts all routes. The archive may be
// nil when archiving is disabled.
func NewServer(cfg Config, orch *pipeline.Orchestrator, tracker *stream.Tracker, v *vision.Analyzer, aud *audio.Analyzer, arc *archive.Archive, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "web")

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		orch:    orch,
		tracker: tracker,
		vision:  v,
		audio:   aud,
		arc:     arc,
		live:    hub.New("live", logger),
		started: time.Now(),
	}
	s.live.OnMessage = s.handleLiveMessage

	app := fiber.New(fiber.Config{
		AppName:               "SkyWatch Fusion Server",
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
	})

	// CORS so a dashboard served from elsewhere can reach the API
	app.Use(cors.New())

	app.Post("/receive_chunk", s.handleReceiveChunk)
	app.Get("/health", s.handleHealth)
	app.Get("/stream_status", s.handleStreamStatus)
	app.Get("/current_trends", s.handleCurrentTrends)
	app.Get("/situations", s.handleSituations)
	app.Get("/stats", s.handleStats)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/live", websocket.New(s.handleLiveWS))

	s.app = app
	return s
}

// Start runs the broadcast hub and serves HTTP. It blocks until the
// server stops.
func (s *Server) Start() error {
	go s.live.Run()
	s.logger.Info("server listening", "port", s.cfg.Port)
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleLiveWS serves one dashboard connection.
func (s *Server) handleLiveWS(c *websocket.Conn) {
	client := hub.NewClient(s.live, c)

	// Send the most recent result so the dashboard has state on connect
	s.lastMu.RLock()
	last := s.lastResult
	s.lastMu.RUnlock()
	if last != nil {
		if data, err := encodeResult(*last); err == nil {
			client.Send(data)
		}
	}

	client.Run() // Blocks until the connection closes
}

// handleLiveMessage answers application-level pings from dashboards.
// Anything else inbound is ignored.
func (s *Server) handleLiveMessage(data []byte) ([]byte, bool) {
	msg, err := protocol.ParseMessage(data)
	if err != nil || msg.Type != protocol.TypePing {
		return nil, false
	}
	ping, err := msg.GetPingData()
	if err != nil {
		return nil, false
	}
	pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, time.Now().UnixMilli())
	if err != nil {
		return nil, false
	}
	out, err := pong.Bytes()
	if err != nil {
		return nil, false
	}
	return out, true
}

// encodeResult wraps a result in the broadcast envelope.
func encodeResult(result protocol.ChunkResult) ([]byte, error) {
	msg, err := protocol.NewResultMessage(result)
	if err != nil {
		return nil, err
	}
	return msg.Bytes()
}
