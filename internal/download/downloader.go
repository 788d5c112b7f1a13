package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rallycut/internal/config"
	"rallycut/internal/logging"
	"rallycut/internal/services"
	"rallycut/internal/textutil"
)

// Options tune a single download.
type Options struct {
	Quality   string
	AudioOnly bool
	FormatID  string
}

// Result describes a finished download.
type Result struct {
	Path    string
	VideoID string
}

// Downloader wraps yt-dlp for pipeline use.
type Downloader struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewDownloader constructs a downloader.
func NewDownloader(cfg *config.Config, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.New(logging.NoopHandler{})
	}
	return &Downloader{cfg: cfg, logger: logging.NewComponentLogger(logger, "download")}
}

var runYtDlp = func(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = os.Stderr
	output, err := cmd.Output()
	return string(output), err
}

// Args builds the yt-dlp argument list for a download into outputDir.
func Args(url, outputDir, cookiesFile string, opts Options) []string {
	args := []string{}
	if cookiesFile != "" {
		args = append(args, "--cookies", cookiesFile)
	}

	switch {
	case opts.AudioOnly:
		args = append(args,
			"-f", "bestaudio",
			"-x",
			"--audio-format", "mp3",
			"--audio-quality", "0",
		)
	case opts.FormatID != "":
		args = append(args, "-f", opts.FormatID)
	default:
		quality := strings.TrimSpace(opts.Quality)
		if quality == "" || quality == "best" {
			// H.264 + AAC keeps downstream stream copies and browser
			// playback happy.
			args = append(args,
				"-f", "bestvideo[vcodec^=avc1]+bestaudio[acodec^=mp4a]/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
			)
		} else {
			args = append(args,
				"-f", fmt.Sprintf("bestvideo[height<=%s][vcodec^=avc1]+bestaudio[acodec^=mp4a]/bestvideo[height<=%s][ext=mp4]+bestaudio[ext=m4a]/best[height<=%s]", quality, quality, quality),
			)
		}
		args = append(args,
			"--merge-output-format", "mp4",
			"--ppa", "ffmpeg:-movflags +faststart",
		)
	}

	args = append(args,
		"-o", filepath.Join(outputDir, "%(title)s.%(ext)s"),
		"--no-playlist",
		"--no-progress",
		"--print", "after_move:filepath",
		url,
	)
	return args
}

// Download fetches the video at url into the configured video directory and
// returns its final path and derived video id.
func (d *Downloader) Download(ctx context.Context, url string, opts Options) (Result, error) {
	var empty Result
	url = strings.TrimSpace(url)
	if url == "" {
		return empty, services.Wrap(services.ErrValidation, "download", "run", "url required", nil)
	}
	if err := os.MkdirAll(d.cfg.Paths.VideoDir, 0o755); err != nil {
		return empty, services.Wrap(services.ErrUnavailable, "download", "run", d.cfg.Paths.VideoDir, err)
	}
	if opts.Quality == "" {
		opts.Quality = d.cfg.Download.Quality
	}

	args := Args(url, d.cfg.Paths.VideoDir, d.cfg.Download.CookiesFile, opts)
	d.logger.Info("downloading", logging.String("url", url), logging.String("quality", opts.Quality))

	output, err := runYtDlp(ctx, d.cfg.Tools.YtDlp, args)
	if err != nil {
		if ctx.Err() != nil {
			return empty, ctx.Err()
		}
		return empty, services.Wrap(services.ErrExternalTool, "download", "run", url, err)
	}

	path := lastNonEmptyLine(output)
	if path == "" {
		return empty, services.Wrap(services.ErrExternalTool, "download", "run", "yt-dlp reported no output file", nil)
	}

	if d.cfg.Download.NormalizeNames {
		normalized, err := NormalizeName(path)
		if err != nil {
			return empty, services.Wrap(services.ErrUnavailable, "download", "normalize", path, err)
		}
		path = normalized
	}

	videoID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d.logger.Info("download complete", logging.String("path", path), logging.String("video_id", videoID))
	return Result{Path: path, VideoID: videoID}, nil
}

// NormalizeName renames a downloaded file to a lowercase filesystem-safe
// token, preserving the extension. Returns the new path.
func NormalizeName(path string) (string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	normalized := textutil.SanitizeToken(textutil.SanitizeFileName(stem))
	target := filepath.Join(dir, normalized+ext)
	if target == path {
		return path, nil
	}
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("normalize name: %w", err)
	}
	return target, nil
}

// DisplayTitle converts a video id or filename stem back into a readable
// title for listings.
func DisplayTitle(videoID string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(videoID)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return videoID
	}
	return cases.Title(language.Und).String(cleaned)
}

func lastNonEmptyLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
