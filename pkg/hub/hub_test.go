package hub

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNew(t *testing.T) {
	h := New("live", testLogger)

	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", h.ClientCount())
	}
	if h.IsRunning() {
		t.Error("hub should not be running before Run")
	}
}

func TestRunSetsRunning(t *testing.T) {
	h := New("live", testLogger)
	go h.Run()

	deadline := time.Now().Add(time.Second)
	for !h.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("hub never reported running")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	h := New("live", testLogger)

	// No run loop, no clients: messages queue in the buffered channel
	// and overflow is dropped rather than blocking the caller.
	for i := 0; i < 300; i++ {
		h.Broadcast([]byte("{}"))
	}
}

func TestBroadcastJSON(t *testing.T) {
	h := New("live", testLogger)

	if err := h.BroadcastJSON(map[string]int{"chunk_id": 1}); err != nil {
		t.Fatalf("BroadcastJSON() error = %v", err)
	}
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected marshal error for unsupported type")
	}
}
