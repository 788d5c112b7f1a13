package config

import (
	"errors"
	"fmt"
)

var validQualities = map[string]struct{}{
	"best": {}, "2160": {}, "1440": {}, "1080": {}, "720": {}, "480": {}, "360": {},
}

// Validate ensures the configuration is usable. Invalid values fail fast;
// nothing is silently clamped.
func (c *Config) Validate() error {
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateVLM(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

func (c *Config) validateVLM() error {
	if c.VLM.BaseURL == "" {
		return errors.New("vlm.base_url must be set")
	}
	if c.VLM.Model == "" {
		return errors.New("vlm.model must be set")
	}
	return nil
}

func (c *Config) validateDetection() error {
	if c.Detection.ClipDuration <= 0 {
		return fmt.Errorf("detection.clip_duration must be positive, got %g", c.Detection.ClipDuration)
	}
	if c.Detection.SlideInterval <= 0 {
		return fmt.Errorf("detection.slide_interval must be positive, got %g", c.Detection.SlideInterval)
	}
	if c.Detection.Concurrency <= 0 {
		return fmt.Errorf("detection.concurrency must be positive, got %d", c.Detection.Concurrency)
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.GapTolerance < 0 {
		return fmt.Errorf("merge.gap_tolerance must not be negative, got %g", c.Merge.GapTolerance)
	}
	if c.Merge.MinRallySeconds < 0 {
		return fmt.Errorf("merge.min_rally_seconds must not be negative, got %g", c.Merge.MinRallySeconds)
	}
	return nil
}

func (c *Config) validateDownload() error {
	if _, ok := validQualities[c.Download.Quality]; !ok {
		return fmt.Errorf("download.quality must be best or a height cap (2160/1440/1080/720/480/360), got %q", c.Download.Quality)
	}
	return nil
}
