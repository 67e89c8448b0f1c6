// Package inference provides a unified interface for LLM, vision, and
// speech-to-text inference.
//
// The package abstracts chat completions, vision analysis, and audio
// transcription behind a single Provider interface, enabling seamless
// switching between providers like Groq, OpenAI, Ollama, vLLM, and others
// that implement the OpenAI-compatible API.
//
// Example usage:
//
//	client, _ := inference.NewClient(
//	    inference.WithAPIKey(os.Getenv("SKYWATCH_API_KEY")),
//	    inference.WithModel("llama-3.3-70b-versatile"),
//	    inference.WithVisionModel("llama-3.2-11b-vision-preview"),
//	)
//	defer client.Close()
//
//	// Chat
//	resp, _ := client.Chat(ctx, &inference.ChatRequest{
//	    Messages: []inference.Message{
//	        {Role: inference.RoleUser, Content: "Hello!"},
//	    },
//	})
//
//	// Vision
//	visionResp, _ := client.Vision(ctx, &inference.VisionRequest{
//	    Image:  frame,
//	    Prompt: "What do you see?",
//	})
//
//	// Transcription
//	text, _ := client.Transcribe(ctx, &inference.TranscribeRequest{
//	    Audio:    wavBytes,
//	    Filename: "chunk.wav",
//	})
package inference

import (
	"context"
	"image"
)

// Provider is the unified inference interface for chat, vision, and
// transcription. All implementations must satisfy this interface.
type Provider interface {
	// Chat generates a response from a sequence of messages.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Vision analyzes an image with a text prompt.
	Vision(ctx context.Context, req *VisionRequest) (*VisionResponse, error)

	// Transcribe converts audio to text.
	Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error)

	// Capabilities returns what features this provider supports.
	Capabilities() Capabilities

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Capabilities describes what features a provider supports.
type Capabilities struct {
	Chat          bool // Supports chat completions
	Vision        bool // Supports image input
	Transcription bool // Supports speech-to-text
}

// ChatRequest for chat completions.
type ChatRequest struct {
	// Messages is the conversation history.
	Messages []Message

	// Model overrides the default model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0.0-2.0).
	Temperature float64

	// TopP controls nucleus sampling.
	TopP float64

	// Stop sequences that halt generation.
	Stop []string
}

// ChatResponse from chat completion.
type ChatResponse struct {
	// Message is the assistant's response.
	Message Message

	// FinishReason indicates why generation stopped.
	FinishReason string

	// Usage tracks token consumption.
	Usage Usage

	// Model used for generation.
	Model string

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// VisionRequest for image analysis.
type VisionRequest struct {
	// Image to analyze (single image).
	Image image.Image

	// Images for multi-image analysis.
	Images []image.Image

	// Prompt describing what to analyze or ask about the image.
	Prompt string

	// Model overrides the default vision model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64
}

// VisionResponse from image analysis.
type VisionResponse struct {
	// Content is the natural language response.
	Content string

	// Usage tracks token consumption.
	Usage Usage

	// Model used for analysis.
	Model string

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// TranscribeRequest for speech-to-text.
type TranscribeRequest struct {
	// Audio is the encoded audio payload (wav, mp3, m4a, ...).
	Audio []byte

	// Filename hints the container format to the provider.
	Filename string

	// Model overrides the default transcription model.
	Model string

	// Language is an ISO-639-1 hint, e.g. "en".
	Language string

	// Temperature controls decoding randomness.
	Temperature float64
}

// TranscribeResponse from speech-to-text.
type TranscribeResponse struct {
	// Text is the transcription.
	Text string

	// Model used for transcription.
	Model string

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// Usage tracks token consumption for billing and limits.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
