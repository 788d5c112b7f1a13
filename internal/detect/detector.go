package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rallycut/internal/annotations"
	"rallycut/internal/config"
	"rallycut/internal/logging"
	"rallycut/internal/media/ffmpeg"
	"rallycut/internal/media/ffprobe"
	"rallycut/internal/services"
	"rallycut/internal/services/vlm"
	"rallycut/internal/timeline"
)

// Classifier produces a verdict for a single extracted clip.
type Classifier interface {
	ClassifyClip(ctx context.Context, clipPath string) (vlm.Classification, error)
}

// Detector orchestrates rally detection for one video at a time.
type Detector struct {
	cfg        *config.Config
	store      *annotations.Store
	logger     *slog.Logger
	classifier Classifier
}

// Result summarizes a completed detection run.
type Result struct {
	RunID       string
	VideoID     string
	Duration    float64
	Windows     int
	Segments    []timeline.RallySegment
	JournalPath string
}

// MalformedClassificationError reports a window whose model output could
// not be parsed while strict mode is enabled.
type MalformedClassificationError struct {
	Start float64
	End   float64
	Err   error
}

func (e *MalformedClassificationError) Error() string {
	return fmt.Sprintf("window [%g, %g): malformed classification: %v", e.Start, e.End, e.Err)
}

func (e *MalformedClassificationError) Unwrap() error {
	return e.Err
}

// NewDetector wires a detector from its collaborators.
func NewDetector(cfg *config.Config, store *annotations.Store, classifier Classifier, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(logging.NoopHandler{})
	}
	return &Detector{
		cfg:        cfg,
		store:      store,
		logger:     logging.NewComponentLogger(logger, "detect"),
		classifier: classifier,
	}
}

// Test hooks for external tools.
var (
	probeVideo  = ffprobe.Inspect
	extractClip = ffmpeg.ExtractClip
)

type windowVerdict struct {
	index          int
	classification vlm.Classification
	malformed      bool
}

// Run detects rallies in the video at sourcePath and saves them as the
// video's auto record. Cancellation abandons the run without writing.
func (d *Detector) Run(ctx context.Context, sourcePath string) (Result, error) {
	var empty Result
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return empty, services.Wrap(services.ErrValidation, "detect", "run", "source path required", nil)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return empty, services.Wrap(services.ErrValidation, "detect", "run", sourcePath, err)
	}

	runID := uuid.NewString()
	videoID := VideoID(sourcePath)
	ctx = services.WithVideoID(ctx, videoID)
	logger := d.logger.With(logging.String("video_id", videoID), logging.String("run_id", runID))

	probe, err := probeVideo(ctx, d.cfg.Tools.FFprobe, sourcePath)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "detect", "probe", sourcePath, err)
	}
	duration := probe.DurationSeconds()
	if !(duration > 0) {
		return empty, services.Wrap(services.ErrValidation, "detect", "probe", fmt.Sprintf("video %s has no usable duration", sourcePath), nil)
	}

	windows, err := timeline.Windows(duration, d.cfg.Detection.ClipDuration, d.cfg.Detection.SlideInterval)
	if err != nil {
		return empty, services.Wrap(services.ErrConfiguration, "detect", "windows", "sliding window layout", err)
	}
	if len(windows) == 0 {
		logger.Warn("video too short for a single window", logging.Float64("duration", duration))
		meta := d.videoMeta(videoID, sourcePath, duration)
		if err := d.store.SaveAuto(ctx, meta, nil); err != nil {
			return empty, err
		}
		return Result{RunID: runID, VideoID: videoID, Duration: duration}, nil
	}

	stagingDir := filepath.Join(d.cfg.Paths.StagingDir, runID)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return empty, services.Wrap(services.ErrUnavailable, "detect", "staging", stagingDir, err)
	}
	defer func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			logger.Warn("staging cleanup failed", logging.Error(err))
		}
	}()

	journal, err := newJournal(filepath.Join(d.cfg.Paths.StagingDir, videoID+".windows.jsonl"))
	if err != nil {
		return empty, services.Wrap(services.ErrUnavailable, "detect", "journal", "open journal", err)
	}
	defer journal.Close()

	if err := journal.WriteMeta(journalMeta{
		VideoID:       videoID,
		Source:        sourcePath,
		Duration:      duration,
		ClipDuration:  d.cfg.Detection.ClipDuration,
		SlideInterval: d.cfg.Detection.SlideInterval,
		Model:         d.cfg.VLM.Model,
		RunID:         runID,
	}); err != nil {
		return empty, services.Wrap(services.ErrUnavailable, "detect", "journal", "write meta", err)
	}

	logger.Info("classifying windows",
		logging.Float64("duration", duration),
		logging.Int("windows", len(windows)),
		logging.Int("concurrency", d.cfg.Detection.Concurrency),
	)

	verdicts, err := d.classifyWindows(ctx, logger, sourcePath, stagingDir, windows, journal)
	if err != nil {
		return empty, err
	}

	for _, verdict := range verdicts {
		windows[verdict.index].InRally = verdict.classification.InRally
		windows[verdict.index].ShotType = verdict.classification.Shot()
	}

	atoms := timeline.ResolveOverlaps(windows)
	segments, err := timeline.MergeRallies(atoms, d.cfg.Merge.GapTolerance)
	if err != nil {
		return empty, services.Wrap(services.ErrConfiguration, "detect", "merge", "merge rallies", err)
	}
	segments = timeline.FilterShort(segments, d.cfg.Merge.MinRallySeconds)

	meta := d.videoMeta(videoID, sourcePath, duration)
	if err := d.store.SaveAuto(ctx, meta, segments); err != nil {
		return empty, err
	}

	logger.Info("detection complete",
		logging.Int("windows", len(windows)),
		logging.Int("rallies", len(segments)),
	)

	return Result{
		RunID:       runID,
		VideoID:     videoID,
		Duration:    duration,
		Windows:     len(windows),
		Segments:    segments,
		JournalPath: journal.Path(),
	}, nil
}

func (d *Detector) classifyWindows(ctx context.Context, logger *slog.Logger, sourcePath, stagingDir string, windows []timeline.Window, journal *Journal) ([]windowVerdict, error) {
	concurrency := d.cfg.Detection.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(windows) {
		concurrency = len(windows)
	}

	jobs := make(chan int)
	results := make([]windowVerdict, len(windows))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for workerID := 0; workerID < concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				verdict, err := d.classifyWindow(runCtx, sourcePath, stagingDir, windows[index], index)
				if err != nil {
					fail(err)
					return
				}
				results[index] = verdict
				if verdict.malformed {
					logger.Warn("malformed classification treated as non-gameplay",
						logging.Float64("start", windows[index].Start),
						logging.Float64("end", windows[index].End),
					)
				}
				if err := journal.WriteWindow(windows[index], verdict.classification, verdict.malformed); err != nil {
					fail(services.Wrap(services.ErrUnavailable, "detect", "journal", "write window", err))
					return
				}
			}
		}()
	}

feed:
	for index := range windows {
		select {
		case jobs <- index:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Workers finish out of order; restore window order for resolution.
	sort.SliceStable(results, func(i, j int) bool { return results[i].index < results[j].index })
	return results, nil
}

func (d *Detector) classifyWindow(ctx context.Context, sourcePath, stagingDir string, window timeline.Window, index int) (windowVerdict, error) {
	if err := ctx.Err(); err != nil {
		return windowVerdict{}, err
	}

	clipPath := filepath.Join(stagingDir, fmt.Sprintf("window_%04d.mp4", index))
	if err := extractClip(ctx, d.cfg.Tools.FFmpeg, sourcePath, window.Start, window.End-window.Start, clipPath); err != nil {
		if ctx.Err() != nil {
			return windowVerdict{}, ctx.Err()
		}
		return windowVerdict{}, services.Wrap(services.ErrExternalTool, "detect", "extract", clipPath, err)
	}
	defer os.Remove(clipPath)

	classification, err := d.classifier.ClassifyClip(ctx, clipPath)
	if err != nil {
		if ctx.Err() != nil {
			return windowVerdict{}, ctx.Err()
		}
		// Only unparsable content degrades to non-gameplay. Transport
		// failures abort the run regardless of strict mode, otherwise a
		// dead server would silently classify everything as no-play.
		if !errors.Is(err, vlm.ErrMalformedResponse) {
			return windowVerdict{}, services.Wrap(services.ErrExternalTool, "detect", "classify", clipPath, err)
		}
		if d.cfg.VLM.Strict {
			return windowVerdict{}, services.Wrap(services.ErrValidation, "detect", "classify",
				"strict mode", &MalformedClassificationError{Start: window.Start, End: window.End, Err: err})
		}
		return windowVerdict{index: index, classification: vlm.Classification{}, malformed: true}, nil
	}
	return windowVerdict{index: index, classification: classification}, nil
}

func (d *Detector) videoMeta(videoID, sourcePath string, duration float64) annotations.VideoMeta {
	return annotations.VideoMeta{
		VideoID:         videoID,
		SourcePath:      sourcePath,
		DurationSeconds: duration,
		ClipDuration:    d.cfg.Detection.ClipDuration,
		SlideInterval:   d.cfg.Detection.SlideInterval,
		DetectedAt:      time.Now().UTC(),
	}
}

// VideoID derives the stable identifier for a video from its filename stem.
func VideoID(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsCancelled reports whether err represents run abandonment rather than a
// pipeline failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
