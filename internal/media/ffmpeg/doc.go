// Package ffmpeg builds and runs the ffmpeg invocations the pipeline needs:
// fast silent clip extraction for classification, and frame-accurate
// re-encoded exports for finished rallies.
//
// Argument construction is split from execution so tests can assert the
// exact command lines without spawning ffmpeg.
package ffmpeg
