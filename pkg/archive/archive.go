// Package archive persists processed chunk artifacts to local disk for
// post-mission review: the annotated frame and a metadata document per
// chunk, named by a shared archive id.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skywatch-uas/go-skywatch/pkg/protocol"
)

// Entry is the metadata document written for each archived chunk.
type Entry struct {
	ID              string   `json:"id"`
	ChunkID         int      `json:"chunk_id"`
	Timestamp       float64  `json:"timestamp"`
	ArchivedAt      string   `json:"archived_at"`
	HumanCount      int      `json:"human_count"`
	DangerLevel     string   `json:"danger_level"`
	SafetyStatus    string   `json:"safety_status"`
	Description     string   `json:"description"`
	Transcription   string   `json:"transcription"`
	KeyObservations []string `json:"key_observations"`
	Sector          string   `json:"sector"`
	ImagePath       string   `json:"image_path,omitempty"`
}

// Archive writes chunk artifacts under a base directory:
//
//	<base>/images/<id>_annotated.jpg
//	<base>/metadata/<id>_metadata.json
type Archive struct {
	base string
	mu   sync.Mutex
}

// New creates an archive rooted at base, creating the directories if
// needed.
func New(base string) (*Archive, error) {
	for _, dir := range []string{imagesDir(base), metadataDir(base)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	return &Archive{base: base}, nil
}

func imagesDir(base string) string   { return filepath.Join(base, "images") }
func metadataDir(base string) string { return filepath.Join(base, "metadata") }

// Path returns the archive's base directory.
func (a *Archive) Path() string {
	return a.base
}

// Save archives one processed chunk. The annotated frame may be nil when
// annotation is disabled; metadata is written either way. Error results
// carry no analysis and are rejected.
func (a *Archive) Save(result protocol.ChunkResult, annotated []byte) error {
	if result.Analysis == nil {
		return fmt.Errorf("chunk %d: no analysis to archive", result.ChunkID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	id := uuid.New().String()
	entry := Entry{
		ID:              id,
		ChunkID:         result.ChunkID,
		Timestamp:       result.Timestamp,
		ArchivedAt:      time.Now().Format(time.RFC3339),
		HumanCount:      result.Analysis.HumansDetected,
		DangerLevel:     string(result.Analysis.DangerLevel),
		SafetyStatus:    result.Analysis.SafetyStatus,
		Description:     result.Analysis.SceneDescription,
		Transcription:   result.Analysis.AudioTranscription,
		KeyObservations: result.Analysis.KeyObservations,
		Sector:          result.Analysis.Sector,
	}

	if len(annotated) > 0 {
		imagePath := filepath.Join(imagesDir(a.base), id+"_annotated.jpg")
		if err := writeFileAtomic(imagePath, annotated); err != nil {
			return fmt.Errorf("failed to write annotated frame: %w", err)
		}
		entry.ImagePath = imagePath
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	metaPath := filepath.Join(metadataDir(a.base), id+"_metadata.json")
	if err := writeFileAtomic(metaPath, data); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// Count returns the number of archived chunks.
func (a *Archive) Count() int {
	matches, err := filepath.Glob(filepath.Join(metadataDir(a.base), "*_metadata.json"))
	if err != nil {
		return 0
	}
	return len(matches)
}

// writeFileAtomic writes to a temp file first, then renames (atomic write).
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return err
	}
	return nil
}
