// Package detect runs the sliding-window rally detection pipeline for a
// single video.
//
// The pipeline probes the video duration, lays out overlapping windows,
// extracts a silent clip per window, classifies each clip with the
// vision-language model, resolves overlapping verdicts into atoms, merges
// atoms into rally segments, and stores the result as the video's auto
// record. Per-window verdicts are journaled to a JSONL file as they arrive
// so a long run leaves evidence even when it fails partway.
//
// Windows classify concurrently up to the configured limit; results are
// re-sorted by window order before resolution, so completion order never
// affects the outcome. Cancellation abandons the whole video: no partial
// auto record is written, because a half-classified timeline would merge
// into rallies that look complete but are not.
//
// A clip whose classification cannot be parsed counts as non-gameplay by
// default; strict mode fails the run instead so the gap is investigated
// rather than silently skipped.
package detect
