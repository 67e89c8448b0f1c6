package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/skywatch-uas/go-skywatch/pkg/fusion"
	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
)

// testArchive creates a temporary archive for testing.
func testArchive(t *testing.T) (*Archive, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "archive-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	a, err := New(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create archive: %v", err)
	}

	cleanup := func() {
		os.RemoveAll(tmpDir)
	}

	return a, cleanup
}

func testResult(chunkID int) protocol.ChunkResult {
	return protocol.ChunkResult{
		ChunkID:   chunkID,
		Timestamp: 1700000000.5,
		Status:    protocol.StatusSuccess,
		Analysis: &fusion.Situation{
			ChunkID:            chunkID,
			HumansDetected:     2,
			DangerLevel:        fusion.DangerMedium,
			SafetyStatus:       "UNSAFE",
			SceneDescription:   "Two people near a collapsed wall",
			AudioTranscription: "help us",
			KeyObservations:    []string{"2: Two people near a collapsed wall"},
			Sector:             "B1",
		},
	}
}

func TestNewCreatesDirectories(t *testing.T) {
	a, cleanup := testArchive(t)
	defer cleanup()

	for _, dir := range []string{imagesDir(a.Path()), metadataDir(a.Path())} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestSaveWritesImageAndMetadata(t *testing.T) {
	a, cleanup := testArchive(t)
	defer cleanup()

	annotated := []byte{0xFF, 0xD8, 0xFF, 0xE0} // Fake JPEG header
	if err := a.Save(testResult(7), annotated); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	images, _ := filepath.Glob(filepath.Join(imagesDir(a.Path()), "*_annotated.jpg"))
	if len(images) != 1 {
		t.Fatalf("expected 1 archived image, got %d", len(images))
	}
	metas, _ := filepath.Glob(filepath.Join(metadataDir(a.Path()), "*_metadata.json"))
	if len(metas) != 1 {
		t.Fatalf("expected 1 metadata file, got %d", len(metas))
	}

	data, err := os.ReadFile(metas[0])
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("parse metadata: %v", err)
	}

	if entry.ChunkID != 7 {
		t.Errorf("ChunkID = %d, want 7", entry.ChunkID)
	}
	if entry.HumanCount != 2 {
		t.Errorf("HumanCount = %d, want 2", entry.HumanCount)
	}
	if entry.SafetyStatus != "UNSAFE" {
		t.Errorf("SafetyStatus = %q, want UNSAFE", entry.SafetyStatus)
	}
	if entry.DangerLevel != "medium" {
		t.Errorf("DangerLevel = %q, want medium", entry.DangerLevel)
	}
	if entry.Sector != "B1" {
		t.Errorf("Sector = %q, want B1", entry.Sector)
	}
	if entry.ImagePath != images[0] {
		t.Errorf("ImagePath = %q, want %q", entry.ImagePath, images[0])
	}

	saved, err := os.ReadFile(entry.ImagePath)
	if err != nil {
		t.Fatalf("read archived image: %v", err)
	}
	if len(saved) != len(annotated) {
		t.Errorf("archived image length = %d, want %d", len(saved), len(annotated))
	}
}

func TestSaveWithoutAnnotatedFrame(t *testing.T) {
	a, cleanup := testArchive(t)
	defer cleanup()

	if err := a.Save(testResult(1), nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	images, _ := filepath.Glob(filepath.Join(imagesDir(a.Path()), "*"))
	if len(images) != 0 {
		t.Errorf("expected no images, got %d", len(images))
	}

	metas, _ := filepath.Glob(filepath.Join(metadataDir(a.Path()), "*_metadata.json"))
	if len(metas) != 1 {
		t.Fatalf("expected metadata without image, got %d files", len(metas))
	}

	data, _ := os.ReadFile(metas[0])
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("parse metadata: %v", err)
	}
	if entry.ImagePath != "" {
		t.Errorf("expected empty ImagePath, got %q", entry.ImagePath)
	}
}

func TestSaveRejectsErrorResult(t *testing.T) {
	a, cleanup := testArchive(t)
	defer cleanup()

	result := protocol.ChunkResult{ChunkID: 3, Status: protocol.StatusError, Error: "boom"}
	if err := a.Save(result, nil); err == nil {
		t.Fatal("expected error archiving a result without analysis")
	}
	if a.Count() != 0 {
		t.Errorf("expected empty archive, got %d entries", a.Count())
	}
}

func TestCount(t *testing.T) {
	a, cleanup := testArchive(t)
	defer cleanup()

	for i := 1; i <= 3; i++ {
		if err := a.Save(testResult(i), []byte("img")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	if a.Count() != 3 {
		t.Errorf("Count() = %d, want 3", a.Count())
	}
}
