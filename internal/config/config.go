// Package config loads process configuration for go-skywatch commands
// from environment variables, with optional .env file support.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/skywatch-uas/go-skywatch/internal/log"
)

// ErrMissingAPIKey is returned when no capability API key is configured.
// This is the only configuration error that prevents startup.
var ErrMissingAPIKey = errors.New("config: SKYWATCH_API_KEY is not set")

// Config holds process-level configuration for the fusion server.
// Engine tuning knobs (tile sizes, worker counts, window capacity) live
// on the per-package Config structs, not here.
type Config struct {
	// HTTP
	Port string

	// Capability service (OpenAI-compatible API)
	APIKey          string
	BaseURL         string
	VisionModel     string
	ChatModel       string
	TranscribeModel string

	// Engine overrides, forwarded into the per-package configs
	Workers    int
	WindowSize int
	GapSeconds float64

	// Archive output; empty disables persistence
	ArchiveDir string

	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	return &Config{
		Port:            getEnv("SKYWATCH_PORT", "8000"),
		APIKey:          getEnv("SKYWATCH_API_KEY", ""),
		BaseURL:         getEnv("SKYWATCH_BASE_URL", "https://api.groq.com/openai/v1"),
		VisionModel:     getEnv("SKYWATCH_VISION_MODEL", "llama-3.2-11b-vision-preview"),
		ChatModel:       getEnv("SKYWATCH_CHAT_MODEL", "llama-3.3-70b-versatile"),
		TranscribeModel: getEnv("SKYWATCH_TRANSCRIBE_MODEL", "whisper-large-v3-turbo"),
		Workers:         getEnvInt("SKYWATCH_WORKERS", 4),
		WindowSize:      getEnvInt("SKYWATCH_WINDOW_SIZE", 10),
		GapSeconds:      getEnvFloat("SKYWATCH_GAP_SECONDS", 2.0),
		ArchiveDir:      getEnv("SKYWATCH_ARCHIVE_DIR", "data"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
