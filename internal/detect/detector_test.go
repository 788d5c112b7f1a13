package detect

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"

	"rallycut/internal/config"
	"rallycut/internal/media/ffprobe"
	"rallycut/internal/services/vlm"
	"rallycut/internal/testsupport"
	"rallycut/internal/timeline"
)

// stubTools routes the package tool hooks at a fake probe and extractor and
// records which window span each clip path stands for.
type stubTools struct {
	mu       sync.Mutex
	duration float64
	starts   map[string]float64
}

func installStubTools(t *testing.T, duration float64) *stubTools {
	t.Helper()
	stub := &stubTools{duration: duration, starts: make(map[string]float64)}

	origProbe, origExtract := probeVideo, extractClip
	t.Cleanup(func() {
		probeVideo, extractClip = origProbe, origExtract
	})

	probeVideo = func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{Duration: strconv.FormatFloat(stub.duration, 'f', -1, 64)}}, nil
	}
	extractClip = func(ctx context.Context, binary, source string, start, dur float64, output string) error {
		stub.mu.Lock()
		stub.starts[output] = start
		stub.mu.Unlock()
		return os.WriteFile(output, []byte("clip"), 0o644)
	}
	return stub
}

func (s *stubTools) startOf(clipPath string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts[clipPath]
}

// verdictFunc adapts a function to the Classifier interface.
type verdictFunc func(ctx context.Context, clipPath string) (vlm.Classification, error)

func (f verdictFunc) ClassifyClip(ctx context.Context, clipPath string) (vlm.Classification, error) {
	return f(ctx, clipPath)
}

func writeSourceVideo(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	path := cfg.Paths.VideoDir + "/" + name
	testsupport.WriteFile(t, path, 64)
	return path
}

func gameplayClassification() vlm.Classification {
	return vlm.Classification{InRally: true, ShotType: string(timeline.ShotFullCourt), Confidence: 0.9}
}

func idleClassification() vlm.Classification {
	return vlm.Classification{InRally: false, ShotType: string(timeline.ShotOther), Confidence: 0.9}
}

func TestDetectorRunProducesMergedRallies(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDetection(6, 3))
	cfg.Merge.GapTolerance = 2
	cfg.Merge.MinRallySeconds = 3
	store := testsupport.MustOpenStore(t, cfg)
	tools := installStubTools(t, 24)
	source := writeSourceVideo(t, cfg, "match1.mp4")

	// Gameplay in the first 9 seconds and again from 15 on.
	classifier := verdictFunc(func(ctx context.Context, clipPath string) (vlm.Classification, error) {
		start := tools.startOf(clipPath)
		if start < 9 || start >= 15 {
			return gameplayClassification(), nil
		}
		return idleClassification(), nil
	})

	detector := NewDetector(cfg, store, classifier, nil)
	result, err := detector.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.VideoID != "match1" {
		t.Fatalf("video id = %q", result.VideoID)
	}
	if result.Duration != 24 {
		t.Fatalf("duration = %v", result.Duration)
	}
	// 24s at slide 3 lays out windows 0..21, with the last ones shortened.
	if result.Windows != 8 {
		t.Fatalf("windows = %d", result.Windows)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 rallies, got %+v", result.Segments)
	}
	if result.Segments[0].Start != 0 || result.Segments[1].End != 24 {
		t.Fatalf("unexpected rally bounds: %+v", result.Segments)
	}

	record, err := store.Auto(context.Background(), "match1")
	if err != nil {
		t.Fatalf("Auto: %v", err)
	}
	if record == nil || len(record.Segments) != 2 {
		t.Fatalf("auto record not persisted: %+v", record)
	}
	if record.Segments[0].Status != timeline.StatusAuto || !record.Segments[0].Keep {
		t.Fatalf("unexpected persisted segment: %+v", record.Segments[0])
	}
}

func TestDetectorJournalsEveryWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDetection(6, 3))
	store := testsupport.MustOpenStore(t, cfg)
	installStubTools(t, 12)
	source := writeSourceVideo(t, cfg, "short.mp4")

	classifier := verdictFunc(func(ctx context.Context, clipPath string) (vlm.Classification, error) {
		return gameplayClassification(), nil
	})

	detector := NewDetector(cfg, store, classifier, nil)
	result, err := detector.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	file, err := os.Open(result.JournalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatal("journal missing meta line")
	}
	var meta struct {
		VideoID       string  `json:"video_id"`
		ClipDuration  float64 `json:"clip_duration"`
		SlideInterval float64 `json:"slide_interval"`
	}
	if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
		t.Fatalf("decode meta line: %v", err)
	}
	if meta.VideoID != "short" || meta.ClipDuration != 6 || meta.SlideInterval != 3 {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	var windowLines int
	for scanner.Scan() {
		var line struct {
			Start    float64 `json:"start_time"`
			End      float64 `json:"end_time"`
			ShotType string  `json:"shot_type"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("decode window line: %v", err)
		}
		if line.End <= line.Start || line.ShotType == "" {
			t.Fatalf("bad window line: %+v", line)
		}
		windowLines++
	}
	if windowLines != result.Windows {
		t.Fatalf("journal has %d window lines, expected %d", windowLines, result.Windows)
	}
}

func TestDetectorCancellationAbandonsVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDetection(6, 3))
	cfg.Detection.Concurrency = 2
	store := testsupport.MustOpenStore(t, cfg)
	installStubTools(t, 60)
	source := writeSourceVideo(t, cfg, "cancelled.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	var once sync.Once
	classifier := verdictFunc(func(clipCtx context.Context, clipPath string) (vlm.Classification, error) {
		once.Do(cancel)
		<-clipCtx.Done()
		return vlm.Classification{}, clipCtx.Err()
	})

	detector := NewDetector(cfg, store, classifier, nil)
	_, err := detector.Run(ctx, source)
	if !IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	record, loadErr := store.Auto(context.Background(), "cancelled")
	if loadErr != nil {
		t.Fatalf("Auto: %v", loadErr)
	}
	if record != nil {
		t.Fatalf("cancelled run must not persist a partial record, got %+v", record)
	}
}

func TestDetectorMalformedVerdictDefaultsToNonGameplay(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDetection(6, 3))
	store := testsupport.MustOpenStore(t, cfg)
	tools := installStubTools(t, 12)
	source := writeSourceVideo(t, cfg, "garbled.mp4")

	malformed := fmt.Errorf("parse payload: %w", vlm.ErrMalformedResponse)
	classifier := verdictFunc(func(ctx context.Context, clipPath string) (vlm.Classification, error) {
		if tools.startOf(clipPath) == 0 {
			return vlm.Classification{}, malformed
		}
		return idleClassification(), nil
	})

	detector := NewDetector(cfg, store, classifier, nil)
	result, err := detector.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run should tolerate malformed verdicts: %v", err)
	}
	if len(result.Segments) != 0 {
		t.Fatalf("malformed verdict must not count as gameplay: %+v", result.Segments)
	}
}

func TestDetectorStrictModeFailsOnMalformedVerdict(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDetection(6, 3))
	cfg.VLM.Strict = true
	store := testsupport.MustOpenStore(t, cfg)
	installStubTools(t, 12)
	source := writeSourceVideo(t, cfg, "strict.mp4")

	classifier := verdictFunc(func(ctx context.Context, clipPath string) (vlm.Classification, error) {
		return vlm.Classification{}, fmt.Errorf("parse payload: %w", vlm.ErrMalformedResponse)
	})

	detector := NewDetector(cfg, store, classifier, nil)
	_, err := detector.Run(context.Background(), source)
	if err == nil {
		t.Fatal("expected strict mode failure")
	}
	var malformedErr *MalformedClassificationError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("expected MalformedClassificationError, got %v", err)
	}
	if malformedErr.End <= malformedErr.Start {
		t.Fatalf("error should name the window span: %+v", malformedErr)
	}
}

func TestDetectorTransportErrorFailsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDetection(6, 3))
	store := testsupport.MustOpenStore(t, cfg)
	installStubTools(t, 12)
	source := writeSourceVideo(t, cfg, "down.mp4")

	classifier := verdictFunc(func(ctx context.Context, clipPath string) (vlm.Classification, error) {
		return vlm.Classification{}, errors.New("connection refused")
	})

	detector := NewDetector(cfg, store, classifier, nil)
	_, err := detector.Run(context.Background(), source)
	if err == nil {
		t.Fatal("transport failures must fail the run, not classify as no-play")
	}

	record, loadErr := store.Auto(context.Background(), "down")
	if loadErr != nil {
		t.Fatalf("Auto: %v", loadErr)
	}
	if record != nil {
		t.Fatalf("failed run must not persist, got %+v", record)
	}
}

func TestDetectorMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	detector := NewDetector(cfg, store, verdictFunc(func(ctx context.Context, clipPath string) (vlm.Classification, error) {
		return vlm.Classification{}, nil
	}), nil)

	if _, err := detector.Run(context.Background(), "/nowhere/missing.mp4"); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestVideoID(t *testing.T) {
	if got := VideoID("/videos/beach_finals.mp4"); got != "beach_finals" {
		t.Fatalf("VideoID = %q", got)
	}
	if got := VideoID("match"); got != "match" {
		t.Fatalf("VideoID without extension = %q", got)
	}
}
