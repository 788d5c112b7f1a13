// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The detection pipeline needs the container duration to lay out sliding
// windows; the annotator needs stream dimensions for display. Both come
// from a single Inspect call.
package ffprobe
