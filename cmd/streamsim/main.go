// streamsim: stream test driver.
//
// Replays paired image/audio files from a data directory as sequential
// chunks against a running fusion server, printing each result and
// polling status and trends every third chunk.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skywatch-uas/go-skywatch/internal/httpc"
	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
)

func main() {
	server := flag.String("server", "http://localhost:8000", "fusion server base URL")
	dataDir := flag.String("data", "test_data", "directory with video/ and audio/ subdirectories")
	interval := flag.Duration("interval", time.Second, "delay between chunks")
	flag.Parse()

	videoFiles, err := listFiles(filepath.Join(*dataDir, "video"), ".jpg", ".jpeg", ".png")
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	audioFiles, err := listFiles(filepath.Join(*dataDir, "audio"), ".wav")
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if len(videoFiles) == 0 || len(audioFiles) == 0 {
		fmt.Printf("❌ No test files found. Add images to %s/video and wav files to %s/audio\n",
			*dataDir, *dataDir)
		os.Exit(1)
	}

	n := len(videoFiles)
	if len(audioFiles) < n {
		n = len(audioFiles)
	}

	fmt.Println("🎬 SkyWatch Stream Simulator")
	fmt.Printf("   Server: %s\n", *server)
	fmt.Printf("   Chunks: %d\n\n", n)

	for i := 0; i < n; i++ {
		chunkID := i + 1
		video, err := os.ReadFile(videoFiles[i])
		if err != nil {
			fmt.Printf("⚠️  chunk %d: %v\n", chunkID, err)
			continue
		}
		audio, err := os.ReadFile(audioFiles[i])
		if err != nil {
			fmt.Printf("⚠️  chunk %d: %v\n", chunkID, err)
			continue
		}

		now := float64(time.Now().UnixNano()) / float64(time.Second)
		chunk := protocol.NewChunkData(chunkID, now, video, audio)

		fmt.Printf("📤 Sending chunk %d (%s + %s)\n",
			chunkID, filepath.Base(videoFiles[i]), filepath.Base(audioFiles[i]))
		if err := postChunk(*server, chunk); err != nil {
			fmt.Printf("⚠️  chunk %d: %v\n", chunkID, err)
		}

		if chunkID%3 == 0 {
			printEndpoint(*server, "/stream_status/", "Stream Status")
			printEndpoint(*server, "/current_trends/", "Current Trends")
		}

		if i < n-1 {
			time.Sleep(*interval)
		}
	}

	fmt.Println("\n✅ Stream replay complete")
}

// listFiles returns files in dir with one of the given extensions.
// os.ReadDir already sorts by filename, which pairs video and audio
// files recorded with matching sequence names.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return files, nil
}

func postChunk(server string, chunk protocol.ChunkData) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	resp, err := httpc.Post(server+"/receive_chunk/", "application/json", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}

	// Replace the annotated frame with its size so the terminal output
	// stays readable.
	var result protocol.ChunkResult
	if err := json.Unmarshal(body, &result); err == nil {
		if result.ImageData != "" {
			result.ImageData = fmt.Sprintf("(%d bytes)", len(result.ImageData))
		}
		if pretty, err := json.MarshalIndent(result, "", "  "); err == nil {
			fmt.Printf("\nResult:\n%s\n\n", pretty)
			return nil
		}
	}
	printJSON("Result", body)
	return nil
}

func printEndpoint(server, path, title string) {
	resp, err := httpc.Get(server + path)
	if err != nil {
		fmt.Printf("⚠️  %s: %v\n", title, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("⚠️  %s: %v\n", title, err)
		return
	}
	printJSON(title, body)
}

func printJSON(title string, data []byte) {
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		fmt.Printf("%s:\n%s\n", title, data)
		return
	}
	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		fmt.Printf("%s:\n%s\n", title, data)
		return
	}
	fmt.Printf("\n%s:\n%s\n\n", title, pretty)
}
