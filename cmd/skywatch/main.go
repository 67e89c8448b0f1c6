// skywatch: multi-modal fusion server for aerial search streams.
//
// Receives video+audio chunks over HTTP, runs tiled human detection and
// audio risk analysis in parallel, fuses them into situation assessments
// and tracks trends across the stream.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skywatch-uas/go-skywatch/internal/config"
	"github.com/skywatch-uas/go-skywatch/internal/log"
	"github.com/skywatch-uas/go-skywatch/pkg/archive"
	"github.com/skywatch-uas/go-skywatch/pkg/audio"
	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
	"github.com/skywatch-uas/go-skywatch/pkg/inference"
	"github.com/skywatch-uas/go-skywatch/pkg/pipeline"
	"github.com/skywatch-uas/go-skywatch/pkg/stream"
	"github.com/skywatch-uas/go-skywatch/pkg/vision"
	"github.com/skywatch-uas/go-skywatch/pkg/web"
)

var version = "1.0.0"

func main() {
	port := flag.String("port", "", "HTTP port (overrides SKYWATCH_PORT)")
	archiveDir := flag.String("archive", "", "archive directory (overrides SKYWATCH_ARCHIVE_DIR)")
	noArchive := flag.Bool("no-archive", false, "disable on-disk situation archiving")
	noAnnotate := flag.Bool("no-annotate", false, "disable annotated frame rendering")
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if *archiveDir != "" {
		cfg.ArchiveDir = *archiveDir
	}
	if *noArchive {
		cfg.ArchiveDir = ""
	}

	log.Init(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ %v\n", err)
		fmt.Println("   Set SKYWATCH_API_KEY in the environment or a .env file.")
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("🛰️  SkyWatch Fusion Server v" + version)
	fmt.Printf("   Port:    %s\n", cfg.Port)
	fmt.Printf("   Vision:  %s\n", cfg.VisionModel)
	fmt.Printf("   Chat:    %s\n", cfg.ChatModel)
	fmt.Printf("   Audio:   %s\n", cfg.TranscribeModel)
	if cfg.ArchiveDir != "" {
		fmt.Printf("   Archive: %s\n", cfg.ArchiveDir)
	} else {
		fmt.Println("   Archive: disabled")
	}
	fmt.Println()

	client, err := inference.NewClient(
		inference.WithBaseURL(cfg.BaseURL),
		inference.WithAPIKey(cfg.APIKey),
		inference.WithModel(cfg.ChatModel),
		inference.WithVisionModel(cfg.VisionModel),
		inference.WithTranscribeModel(cfg.TranscribeModel),
		inference.WithLogger(log.L()),
	)
	if err != nil {
		log.Error("failed to create inference client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	visionCfg := vision.DefaultConfig()
	if cfg.Workers > 0 {
		visionCfg.Workers = cfg.Workers
	}
	visionAnalyzer := vision.NewAnalyzer(client, visionCfg, log.L())
	audioAnalyzer := audio.NewAnalyzer(client, audio.DefaultConfig(), log.L())
	fuser := fusion.NewFuser(fusion.DefaultConfig(), log.L())

	streamCfg := stream.DefaultConfig()
	if cfg.WindowSize > 0 {
		streamCfg.WindowSize = cfg.WindowSize
	}
	if cfg.GapSeconds > 0 {
		streamCfg.GapSeconds = cfg.GapSeconds
	}
	tracker := stream.NewTracker(streamCfg, log.L())

	// A nil *archive.Archive must not reach the pipeline as a non-nil
	// interface, so the Archiver is only assigned when enabled.
	var arc *archive.Archive
	var archiver pipeline.Archiver
	if cfg.ArchiveDir != "" {
		arc, err = archive.New(cfg.ArchiveDir)
		if err != nil {
			log.Error("failed to open archive", "dir", cfg.ArchiveDir, "error", err)
			os.Exit(1)
		}
		archiver = arc
	}

	pipeCfg := pipeline.DefaultConfig()
	if *noAnnotate {
		pipeCfg.Annotate = false
	}
	orch := pipeline.New(pipeCfg, visionAnalyzer, audioAnalyzer, fuser, tracker, archiver, log.L())

	webCfg := web.DefaultConfig()
	webCfg.Port = cfg.Port
	server := web.NewServer(webCfg, orch, tracker, visionAnalyzer, audioAnalyzer, arc, log.L())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		fmt.Printf("\n👋 Received %v, shutting down...\n", sig)
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}
}
