package annotations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"rallycut/internal/config"
	"rallycut/internal/services"
	"rallycut/internal/timeline"
)

// Store manages annotation persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

type namespace string

const (
	namespaceAuto      namespace = "auto_segments"
	namespaceCorrected namespace = "corrected_segments"
)

func (n namespace) status() timeline.SegmentStatus {
	if n == namespaceCorrected {
		return timeline.StatusCorrected
	}
	return timeline.StatusAuto
}

// Open initializes or connects to the annotation database and applies the
// schema. Failures carry the store-unavailable marker so callers propagate
// them instead of retrying.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "annotations", "open", "ensure directories", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "annotations.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "annotations", "open", dbPath, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrUnavailable, "annotations", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveAuto replaces the auto namespace for the video described by meta.
// This is the only write path the detection pipeline uses; corrected rows
// are never touched here.
func (s *Store) SaveAuto(ctx context.Context, meta VideoMeta, segments []timeline.RallySegment) error {
	if meta.VideoID == "" {
		return errors.New("save auto: video id required")
	}
	if err := ValidateSegments(segments); err != nil {
		return fmt.Errorf("save auto: %w", err)
	}

	detectedAt := meta.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save auto: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO videos (video_id, source_path, duration_seconds, clip_duration, slide_interval, detected_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(video_id) DO UPDATE SET
            source_path = excluded.source_path,
            duration_seconds = excluded.duration_seconds,
            clip_duration = excluded.clip_duration,
            slide_interval = excluded.slide_interval,
            detected_at = excluded.detected_at`,
		meta.VideoID,
		meta.SourcePath,
		meta.DurationSeconds,
		meta.ClipDuration,
		meta.SlideInterval,
		detectedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save auto: upsert video: %w", err)
	}

	if err := replaceSegments(ctx, tx, namespaceAuto, meta.VideoID, segments); err != nil {
		return fmt.Errorf("save auto: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save auto: commit: %w", err)
	}
	return nil
}

// SaveCorrected replaces the corrected namespace for a video. A video row
// is created when the detection pipeline has not seen the video yet.
func (s *Store) SaveCorrected(ctx context.Context, videoID string, segments []timeline.RallySegment) error {
	if videoID == "" {
		return errors.New("save corrected: video id required")
	}
	if err := ValidateSegments(segments); err != nil {
		return fmt.Errorf("save corrected: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save corrected: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Mark corrected existence on the video row so an empty corrected
	// record (human verdict: no rallies) still wins over the auto record.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO videos (video_id, corrected_at) VALUES (?, ?)
         ON CONFLICT(video_id) DO UPDATE SET corrected_at = excluded.corrected_at`,
		videoID,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save corrected: ensure video: %w", err)
	}

	if err := replaceSegments(ctx, tx, namespaceCorrected, videoID, segments); err != nil {
		return fmt.Errorf("save corrected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save corrected: commit: %w", err)
	}
	return nil
}

// ClearCorrected removes the corrected record for a video, making the auto
// record authoritative again.
func (s *Store) ClearCorrected(ctx context.Context, videoID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear corrected: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corrected_segments WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("clear corrected: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE videos SET corrected_at = '' WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("clear corrected: reset marker: %w", err)
	}
	return tx.Commit()
}

// Auto loads the auto record for a video, or nil when none exists.
func (s *Store) Auto(ctx context.Context, videoID string) (*Record, error) {
	return s.load(ctx, namespaceAuto, videoID)
}

// Corrected loads the corrected record for a video, or nil when none
// exists. An empty but saved correction is a real record with zero
// segments, distinguished via the corrected_at marker.
func (s *Store) Corrected(ctx context.Context, videoID string) (*Record, error) {
	record, err := s.load(ctx, namespaceCorrected, videoID)
	if err != nil || record != nil {
		return record, err
	}

	var correctedAt string
	err = s.db.QueryRowContext(ctx, `SELECT corrected_at FROM videos WHERE video_id = ?`, videoID).Scan(&correctedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load corrected marker: %w", err)
	}
	if correctedAt == "" {
		return nil, nil
	}
	return &Record{VideoID: videoID, Segments: []timeline.RallySegment{}}, nil
}

// Resolved returns the authoritative record for a video per Reconcile.
func (s *Store) Resolved(ctx context.Context, videoID string) (Record, error) {
	auto, err := s.Auto(ctx, videoID)
	if err != nil {
		return Record{}, err
	}
	corrected, err := s.Corrected(ctx, videoID)
	if err != nil {
		return Record{}, err
	}
	record := Reconcile(auto, corrected)
	if record.VideoID == "" {
		record.VideoID = videoID
	}
	return record, nil
}

// Video returns metadata recorded when the video was last detected, or nil
// when the video is unknown.
func (s *Store) Video(ctx context.Context, videoID string) (*VideoMeta, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT video_id, source_path, duration_seconds, clip_duration, slide_interval, detected_at
         FROM videos WHERE video_id = ?`, videoID)

	var meta VideoMeta
	var detectedRaw string
	err := row.Scan(&meta.VideoID, &meta.SourcePath, &meta.DurationSeconds, &meta.ClipDuration, &meta.SlideInterval, &detectedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load video: %w", err)
	}
	if detectedRaw != "" {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, detectedRaw); parseErr == nil {
			meta.DetectedAt = parsed
		}
	}
	return &meta, nil
}

// Videos lists every known video with its segment counts, ordered by id.
func (s *Store) Videos(ctx context.Context) ([]VideoSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.video_id, v.source_path, v.duration_seconds, v.corrected_at,
            (SELECT COUNT(1) FROM auto_segments a WHERE a.video_id = v.video_id),
            (SELECT COUNT(1) FROM corrected_segments c WHERE c.video_id = v.video_id)
         FROM videos v ORDER BY v.video_id`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var summaries []VideoSummary
	for rows.Next() {
		var summary VideoSummary
		var correctedAt string
		if err := rows.Scan(&summary.VideoID, &summary.SourcePath, &summary.DurationSeconds, &correctedAt, &summary.AutoSegments, &summary.CorrectedCount); err != nil {
			return nil, fmt.Errorf("scan video summary: %w", err)
		}
		summary.Corrected = correctedAt != ""
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Store) load(ctx context.Context, ns namespace, videoID string) (*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_seconds, end_seconds, keep FROM `+string(ns)+`
         WHERE video_id = ? ORDER BY position`, videoID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ns, err)
	}
	defer rows.Close()

	var segments []timeline.RallySegment
	for rows.Next() {
		var seg timeline.RallySegment
		var keep int
		if err := rows.Scan(&seg.Start, &seg.End, &keep); err != nil {
			return nil, fmt.Errorf("scan %s: %w", ns, err)
		}
		seg.Keep = keep != 0
		seg.Status = ns.status()
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if segments == nil {
		return nil, nil
	}
	return &Record{VideoID: videoID, Segments: segments}, nil
}

func replaceSegments(ctx context.Context, tx *sql.Tx, ns namespace, videoID string, segments []timeline.RallySegment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+string(ns)+` WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("clear %s: %w", ns, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, seg := range segments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+string(ns)+` (video_id, position, start_seconds, end_seconds, keep, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			videoID, i, seg.Start, seg.End, boolToInt(seg.Keep), now)
		if err != nil {
			return fmt.Errorf("insert %s row %d: %w", ns, i, err)
		}
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
