package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVLM()
	c.normalizeLogging()
	if err := c.normalizeDownload(); err != nil {
		return err
	}
	c.normalizeTools()
	c.Annotator.Bind = strings.TrimSpace(c.Annotator.Bind)
	if c.Annotator.Bind == "" {
		c.Annotator.Bind = defaultAnnotatorBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.VideoDir, err = ExpandPath(c.Paths.VideoDir); err != nil {
		return fmt.Errorf("paths.video_dir: %w", err)
	}
	if c.Paths.StagingDir, err = ExpandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = ExpandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeVLM() {
	if c.VLM.APIKey == "" {
		if value, ok := os.LookupEnv("VLM_API_KEY"); ok {
			c.VLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.VLM.BaseURL = strings.TrimSpace(c.VLM.BaseURL)
	if c.VLM.BaseURL == "" {
		c.VLM.BaseURL = defaultVLMBaseURL
	}
	c.VLM.Model = strings.TrimSpace(c.VLM.Model)
	if c.VLM.Model == "" {
		c.VLM.Model = defaultVLMModel
	}
	if c.VLM.TimeoutSeconds <= 0 {
		c.VLM.TimeoutSeconds = defaultVLMTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
}

func (c *Config) normalizeDownload() error {
	c.Download.Quality = strings.ToLower(strings.TrimSpace(c.Download.Quality))
	if c.Download.Quality == "" {
		c.Download.Quality = defaultDownloadQuality
	}
	if c.Download.CookiesFile != "" {
		expanded, err := ExpandPath(c.Download.CookiesFile)
		if err != nil {
			return fmt.Errorf("download.cookies_file: %w", err)
		}
		c.Download.CookiesFile = expanded
	}
	return nil
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Tools.YtDlp) == "" {
		c.Tools.YtDlp = defaultYtDlpBinary
	}
}
