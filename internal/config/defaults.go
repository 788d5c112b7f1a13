package config

const (
	defaultVideoDir   = "~/videos"
	defaultStagingDir = "~/.local/share/rallycut/staging"
	defaultDataDir    = "~/.local/share/rallycut"
	defaultLogDir     = "~/.local/share/rallycut/logs"
	defaultExportDir  = "~/videos/cuts"

	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	defaultVLMBaseURL        = "http://localhost:8000/v1/chat/completions"
	defaultVLMModel          = "Qwen/Qwen3-VL-8B-Instruct"
	defaultVLMTimeoutSeconds = 120

	defaultClipDuration  = 6.0
	defaultSlideInterval = 3.0
	defaultConcurrency   = 32

	defaultGapTolerance    = 2.0
	defaultMinRallySeconds = 3.0

	defaultDownloadQuality = "best"

	defaultAnnotatorBind = "127.0.0.1:8002"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultYtDlpBinary   = "yt-dlp"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideoDir:   defaultVideoDir,
			StagingDir: defaultStagingDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			ExportDir:  defaultExportDir,
		},
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		VLM: VLM{
			BaseURL:        defaultVLMBaseURL,
			Model:          defaultVLMModel,
			TimeoutSeconds: defaultVLMTimeoutSeconds,
		},
		Detection: Detection{
			ClipDuration:  defaultClipDuration,
			SlideInterval: defaultSlideInterval,
			Concurrency:   defaultConcurrency,
		},
		Merge: Merge{
			GapTolerance:    defaultGapTolerance,
			MinRallySeconds: defaultMinRallySeconds,
		},
		Download: Download{
			Quality:        defaultDownloadQuality,
			NormalizeNames: true,
		},
		Annotator: Annotator{
			Bind: defaultAnnotatorBind,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			YtDlp:   defaultYtDlpBinary,
		},
	}
}
