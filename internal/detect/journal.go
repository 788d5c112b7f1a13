package detect

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"rallycut/internal/services/vlm"
	"rallycut/internal/timeline"
)

// Journal appends per-window verdicts to a JSONL file as classification
// progresses. The first line is run metadata; every following line is one
// window. Lines flush on write so a killed run still leaves its evidence.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	path string
}

type journalMeta struct {
	VideoID       string  `json:"video_id"`
	Source        string  `json:"source"`
	Duration      float64 `json:"duration"`
	ClipDuration  float64 `json:"clip_duration"`
	SlideInterval float64 `json:"slide_interval"`
	Model         string  `json:"model"`
	RunID         string  `json:"run_id"`
}

type journalWindow struct {
	Start       float64 `json:"start_time"`
	End         float64 `json:"end_time"`
	InRally     bool    `json:"in_rally"`
	ShotType    string  `json:"shot_type"`
	Confidence  float64 `json:"confidence,omitempty"`
	Description string  `json:"description,omitempty"`
	Malformed   bool    `json:"malformed,omitempty"`
}

func newJournal(path string) (*Journal, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}
	return &Journal{file: file, path: path}, nil
}

// Path returns the journal's on-disk location.
func (j *Journal) Path() string {
	return j.path
}

// WriteMeta records the run header. Call once before any window lines.
func (j *Journal) WriteMeta(meta journalMeta) error {
	return j.writeLine(meta)
}

// WriteWindow records one classified window. Safe for concurrent use.
func (j *Journal) WriteWindow(window timeline.Window, classification vlm.Classification, malformed bool) error {
	shotType := classification.ShotType
	if shotType == "" {
		shotType = string(timeline.ShotOther)
	}
	return j.writeLine(journalWindow{
		Start:       window.Start,
		End:         window.End,
		InRally:     classification.InRally,
		ShotType:    shotType,
		Confidence:  classification.Confidence,
		Description: classification.Description,
		Malformed:   malformed,
	})
}

// Close releases the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

func (j *Journal) writeLine(payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode journal line: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return fmt.Errorf("journal closed")
	}
	if _, err := j.file.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("write journal line: %w", err)
	}
	return j.file.Sync()
}
