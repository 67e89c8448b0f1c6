// watch: terminal live-feed viewer for the fusion server.
//
// Connects to /ws/live and prints each chunk result as it is broadcast.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
)

func main() {
	server := flag.String("server", "localhost:8000", "fusion server host:port")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/live", *server)
	fmt.Println("👁  SkyWatch Live Feed")
	fmt.Printf("   Server: %s\n\n", url)

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Printf("❌ Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer ws.Close()
	fmt.Println("✅ Connected, waiting for results...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var results, errors int
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			if msg.Type != protocol.TypeResult {
				continue
			}
			result, err := msg.GetChunkResult()
			if err != nil {
				continue
			}
			printResult(result)
			if result.Status == protocol.StatusError {
				errors++
			} else {
				results++
			}
		}
	}()

	// Application-level pings keep idle connections alive through proxies.
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	alive := true
	for alive {
		select {
		case <-ticker.C:
			ping, err := protocol.NewPingMessage(uuid.New().String())
			if err != nil {
				continue
			}
			data, err := ping.Bytes()
			if err != nil {
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				fmt.Printf("\n❌ Connection lost: %v\n", err)
				ws.Close()
				<-done
				alive = false
			}
		case <-done:
			fmt.Println("\n❌ Connection closed by server")
			alive = false
		case <-sigChan:
			fmt.Println("\n👋 Closing...")
			ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			ws.Close()
			<-done
			alive = false
		}
	}

	fmt.Printf("\n📊 Session: %d results, %d errors\n", results, errors)
}

func printResult(r *protocol.ChunkResult) {
	if r.Status == protocol.StatusError {
		fmt.Printf("⚠️  chunk %-4d error: %s\n", r.ChunkID, r.Error)
		return
	}
	a := r.Analysis
	if a == nil {
		return
	}

	icon := "🟢"
	switch a.DangerLevel {
	case fusion.DangerMedium:
		icon = "🟡"
	case fusion.DangerHigh:
		icon = "🔴"
	}

	fmt.Printf("%s chunk %-4d sector %-3s humans=%d danger=%-6s safety=%-6s conf=%.2f (%.2fs)\n",
		icon, r.ChunkID, a.Sector, a.HumansDetected, a.DangerLevel, a.SafetyStatus,
		a.Confidence, r.ProcessingTime)
	for _, obs := range a.KeyObservations {
		fmt.Printf("   · %s\n", obs)
	}
	if a.AudioTranscription != "" {
		fmt.Printf("   🎙  %s\n", a.AudioTranscription)
	}
}
