// Package download fetches source videos with yt-dlp.
//
// Downloads land in the configured video directory as H.264/AAC mp4 so the
// rest of the pipeline (stream-copied clip extraction, browser playback in
// the annotator) works without re-encoding. The final file path comes from
// yt-dlp itself via --print after_move:filepath, which survives title
// templating and merge steps.
package download
