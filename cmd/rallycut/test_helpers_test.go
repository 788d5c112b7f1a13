package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rallycut/internal/annotations"
	"rallycut/internal/config"
	"rallycut/internal/testsupport"
	"rallycut/internal/timeline"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	configPath := filepath.Join(homeDir, ".config", "rallycut", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func (env *cliTestEnv) seedAuto(t *testing.T, videoID string, segments []timeline.RallySegment) {
	t.Helper()
	store := testsupport.MustOpenStore(t, env.cfg)
	meta := annotations.VideoMeta{
		VideoID:         videoID,
		SourcePath:      filepath.Join(env.cfg.Paths.VideoDir, videoID+".mp4"),
		DurationSeconds: 120,
	}
	if err := store.SaveAuto(context.Background(), meta, segments); err != nil {
		t.Fatalf("seed auto record: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nvideo_dir = %q\nstaging_dir = %q\ndata_dir = %q\nlog_dir = %q\nexport_dir = %q\n\n[tools]\nffmpeg = %q\nffprobe = %q\nytdlp = %q\n\n[annotator]\nbind = %q\n",
		cfg.Paths.VideoDir,
		cfg.Paths.StagingDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.ExportDir,
		cfg.Tools.FFmpeg,
		cfg.Tools.FFprobe,
		cfg.Tools.YtDlp,
		cfg.Annotator.Bind,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
