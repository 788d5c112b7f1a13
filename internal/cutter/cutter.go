package cutter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rallycut/internal/annotations"
	"rallycut/internal/config"
	"rallycut/internal/logging"
	"rallycut/internal/media/ffmpeg"
	"rallycut/internal/services"
	"rallycut/internal/timeline"
)

// Cutter exports rally segments from source videos.
type Cutter struct {
	cfg    *config.Config
	store  *annotations.Store
	logger *slog.Logger
}

// Result reports per-segment outcomes for one export batch.
type Result struct {
	VideoID   string
	Succeeded []string
	Failed    []string
	Skipped   int
}

// NewCutter constructs a cutter.
func NewCutter(cfg *config.Config, store *annotations.Store, logger *slog.Logger) *Cutter {
	if logger == nil {
		logger = slog.New(logging.NoopHandler{})
	}
	return &Cutter{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "cutter")}
}

var exportSegment = ffmpeg.ExportSegment

// Export cuts every kept segment of the video's reconciled record into the
// export directory. Returns the per-segment outcome; the error is reserved
// for failures that prevent the batch from running at all.
func (c *Cutter) Export(ctx context.Context, videoID string) (Result, error) {
	var empty Result
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return empty, services.Wrap(services.ErrValidation, "cutter", "export", "video id required", nil)
	}

	record, err := c.store.Resolved(ctx, videoID)
	if err != nil {
		return empty, err
	}
	if len(record.Segments) == 0 {
		return empty, services.Wrap(services.ErrNotFound, "cutter", "export",
			fmt.Sprintf("no segments recorded for %s", videoID), nil)
	}

	meta, err := c.store.Video(ctx, videoID)
	if err != nil {
		return empty, err
	}
	if meta == nil || strings.TrimSpace(meta.SourcePath) == "" {
		return empty, services.Wrap(services.ErrNotFound, "cutter", "export",
			fmt.Sprintf("no source path recorded for %s", videoID), nil)
	}
	if _, err := os.Stat(meta.SourcePath); err != nil {
		return empty, services.Wrap(services.ErrValidation, "cutter", "export", meta.SourcePath, err)
	}

	if err := os.MkdirAll(c.cfg.Paths.ExportDir, 0o755); err != nil {
		return empty, services.Wrap(services.ErrUnavailable, "cutter", "export", c.cfg.Paths.ExportDir, err)
	}

	result := Result{VideoID: videoID}
	for i, segment := range record.Segments {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !segment.Keep {
			result.Skipped++
			continue
		}

		output := OutputPath(c.cfg.Paths.ExportDir, videoID, i)
		err := exportSegment(ctx, c.cfg.Tools.FFmpeg, meta.SourcePath, segment.Start, segment.End, output, c.cfg.Export.StreamCopy)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			c.logger.Error("segment export failed",
				logging.String("video_id", videoID),
				logging.Float64("start", segment.Start),
				logging.Float64("end", segment.End),
				logging.Error(err),
			)
			result.Failed = append(result.Failed, output)
			continue
		}
		c.logger.Info("segment exported",
			logging.String("output", output),
			logging.Float64("seconds", segment.Duration()),
		)
		result.Succeeded = append(result.Succeeded, output)
	}

	return result, nil
}

// OutputPath names the exported clip for the segment at the given position.
func OutputPath(exportDir, videoID string, position int) string {
	return filepath.Join(exportDir, fmt.Sprintf("%s_rally%03d.mp4", videoID, position+1))
}

// KeepCount returns how many segments in the list would be exported.
func KeepCount(segments []timeline.RallySegment) int {
	count := 0
	for _, segment := range segments {
		if segment.Keep {
			count++
		}
	}
	return count
}
