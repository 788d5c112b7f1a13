package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidatesAfterNormalize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Detection.ClipDuration != 6.0 {
		t.Fatalf("unexpected clip duration default: %g", cfg.Detection.ClipDuration)
	}
	if cfg.Detection.SlideInterval != 3.0 {
		t.Fatalf("unexpected slide interval default: %g", cfg.Detection.SlideInterval)
	}
	if cfg.Merge.GapTolerance != 2.0 {
		t.Fatalf("unexpected gap tolerance default: %g", cfg.Merge.GapTolerance)
	}
	if cfg.Detection.Concurrency != 32 {
		t.Fatalf("unexpected concurrency default: %d", cfg.Detection.Concurrency)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[detection]
clip_duration = 4.0
slide_interval = 2.0

[merge]
gap_tolerance = 1.5

[vlm]
model = "test-model"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Detection.ClipDuration != 4.0 || cfg.Detection.SlideInterval != 2.0 {
		t.Fatalf("overrides not applied: %+v", cfg.Detection)
	}
	if cfg.Merge.GapTolerance != 1.5 {
		t.Fatalf("gap tolerance override not applied: %g", cfg.Merge.GapTolerance)
	}
	if cfg.VLM.Model != "test-model" {
		t.Fatalf("vlm model override not applied: %q", cfg.VLM.Model)
	}
	// Untouched sections keep defaults.
	if cfg.Annotator.Bind != defaultAnnotatorBind {
		t.Fatalf("annotator bind default lost: %q", cfg.Annotator.Bind)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		fragment string
	}{
		{"zero clip duration", "[detection]\nclip_duration = 0.0\n", "clip_duration"},
		{"negative slide", "[detection]\nslide_interval = -1.0\n", "slide_interval"},
		{"negative gap tolerance", "[merge]\ngap_tolerance = -0.1\n", "gap_tolerance"},
		{"bad quality", "[download]\nquality = \"potato\"\n", "quality"},
		{"bad log format", "[log]\nformat = \"xml\"\n", "log.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.fragment)
			}
		})
	}
}

func TestVLMAPIKeyEnvFallback(t *testing.T) {
	t.Setenv("VLM_API_KEY", "secret-from-env")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.VLM.APIKey != "secret-from-env" {
		t.Fatalf("expected env fallback, got %q", cfg.VLM.APIKey)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/videos")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "videos") {
		t.Fatalf("ExpandPath(~/videos) = %q", got)
	}
	if got, _ := ExpandPath(""); got != "" {
		t.Fatalf("expected empty result for empty path, got %q", got)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[detection]") {
		t.Fatal("sample config missing detection section")
	}
}
