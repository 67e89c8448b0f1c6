// relay: drone-side best-frame relay.
//
// Receives burst JPEG uploads during each capture chunk, scores them for
// sharpness and forwards only the sharpest frame to the fusion server as
// a chunk payload with no audio track.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/skywatch-uas/go-skywatch/internal/httpc"
	"github.com/skywatch-uas/go-skywatch/internal/log"
	"github.com/skywatch-uas/go-skywatch/pkg/bestframe"
	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
)

func main() {
	port := flag.String("port", "5000", "upload listen port")
	target := flag.String("target", "http://localhost:8000/receive_chunk/", "fusion server chunk endpoint")
	flag.Parse()

	log.Init(os.Getenv("LOG_LEVEL"))

	fmt.Println()
	fmt.Println("📡 SkyWatch Relay")
	fmt.Printf("   Listen:  :%s\n", *port)
	fmt.Printf("   Forward: %s\n", *target)
	fmt.Println()

	buffer := bestframe.NewBuffer(bestframe.NewLaplacian(), log.L())

	app := fiber.New(fiber.Config{
		AppName:               "skywatch-relay",
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024,
	})
	app.Use(recover.New())

	app.Post("/upload", func(c *fiber.Ctx) error {
		idStr := c.Query("chunk_id")
		startStr := c.Query("chunk_start")
		if idStr == "" || startStr == "" {
			return c.Status(fiber.StatusBadRequest).SendString("missing chunk metadata")
		}
		chunkID, idErr := strconv.Atoi(idStr)
		chunkStart, startErr := strconv.ParseFloat(startStr, 64)
		if idErr != nil || startErr != nil {
			return c.Status(fiber.StatusBadRequest).SendString("invalid chunk metadata")
		}
		if len(c.Body()) == 0 {
			return c.Status(fiber.StatusBadRequest).SendString("empty frame")
		}

		// fiber reuses the request buffer after the handler returns.
		frame := make([]byte, len(c.Body()))
		copy(frame, c.Body())

		if best, ok := buffer.Add(chunkID, chunkStart, frame); ok {
			go forward(*target, best)
		}
		return c.SendString(fmt.Sprintf("frame received for chunk %d", chunkID))
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + *port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		fmt.Println("\n👋 Shutting down...")
		// Forward whatever chunk is still buffering before exit.
		if best, ok := buffer.Flush(); ok {
			forward(*target, best)
		}
		app.Shutdown()
	case err := <-errCh:
		if err != nil {
			log.Error("relay stopped", "error", err)
			os.Exit(1)
		}
	}
}

// forward sends the selected frame to the fusion server.
func forward(target string, best *bestframe.Best) {
	chunk := protocol.NewChunkData(best.ChunkID, best.Timestamp, best.Frame, nil)
	payload, err := json.Marshal(chunk)
	if err != nil {
		log.Error("failed to encode chunk payload", "chunk_id", best.ChunkID, "error", err)
		return
	}

	resp, err := httpc.Post(target, "application/json", payload)
	if err != nil {
		log.Error("failed to forward chunk", "chunk_id", best.ChunkID, "error", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Warn("fusion server rejected chunk", "chunk_id", best.ChunkID, "status", resp.StatusCode)
		return
	}
	log.Info("chunk forwarded",
		"chunk_id", best.ChunkID,
		"score", fmt.Sprintf("%.1f", best.Score),
		"frames", best.Frames)
}
