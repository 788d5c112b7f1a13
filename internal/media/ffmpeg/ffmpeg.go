package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ExtractArgs returns the ffmpeg arguments for pulling a clip out of a
// source video. The clip is stream-copied and stripped of audio: it only
// feeds the classifier, so speed matters and fidelity at the cut points
// does not.
func ExtractArgs(source string, start, duration float64, output string) []string {
	return []string{
		"-y",
		"-ss", formatSeconds(start),
		"-i", source,
		"-t", formatSeconds(duration),
		"-c:v", "copy",
		"-an",
		output,
	}
}

// ExportArgs returns the ffmpeg arguments for exporting a rally segment.
// streamCopy trades frame accuracy for speed; the default re-encodes with
// libx264 so cuts land exactly on the requested boundaries.
func ExportArgs(source string, start, end float64, output string, streamCopy bool) []string {
	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-i", source,
		"-t", formatSeconds(end - start),
	}
	if streamCopy {
		args = append(args, "-c:v", "copy", "-c:a", "copy")
	} else {
		args = append(args, "-c:v", "libx264", "-preset", "fast", "-crf", "18", "-c:a", "aac")
	}
	args = append(args, "-movflags", "+faststart", output)
	return args
}

// ExtractClip runs ffmpeg to extract a clip for classification.
func ExtractClip(ctx context.Context, binary, source string, start, duration float64, output string) error {
	if duration <= 0 {
		return errors.New("ffmpeg extract: duration must be positive")
	}
	return run(ctx, binary, ExtractArgs(source, start, duration, output), "extract")
}

// ExportSegment runs ffmpeg to export a single rally segment.
func ExportSegment(ctx context.Context, binary, source string, start, end float64, output string, streamCopy bool) error {
	if end <= start {
		return fmt.Errorf("ffmpeg export: invalid segment [%g, %g)", start, end)
	}
	return run(ctx, binary, ExportArgs(source, start, end, output, streamCopy), "export")
}

func run(ctx context.Context, binary string, args []string, op string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg %s: %w: %s", op, err, tail(string(output), 200))
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}
