package preflight

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"rallycut/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := CheckDirectoryAccess("Test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for %s: %s", dir, result.Detail)
	}

	result = CheckDirectoryAccess("Test", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}

	file := filepath.Join(dir, "file")
	testsupport.WriteFile(t, file, 1)
	result = CheckDirectoryAccess("Test", file)
	if result.Passed {
		t.Fatal("expected failure for non-directory")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	orig := statfs
	t.Cleanup(func() { statfs = orig })

	statfs = func(path string) (uint64, error) { return 10 << 30, nil }
	if result := CheckDiskSpace("Disk", "/staging", 1<<30); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}

	statfs = func(path string) (uint64, error) { return 1 << 20, nil }
	if result := CheckDiskSpace("Disk", "/staging", 1<<30); result.Passed {
		t.Fatal("expected failure for low space")
	}

	statfs = func(path string) (uint64, error) { return 0, errors.New("no such path") }
	if result := CheckDiskSpace("Disk", "/staging", 1<<30); result.Passed {
		t.Fatal("expected failure for statfs error")
	}
}

func TestCheckVLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithVLMBaseURL(server.URL))
	result := CheckVLM(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
}

func TestCheckVLMUnreachable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithVLMBaseURL("http://127.0.0.1:1/v1/chat/completions"))
	result := CheckVLM(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for unreachable server")
	}
}

func TestRunAllReportsEveryCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithVLMBaseURL("http://127.0.0.1:1/v1/chat/completions"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, result := range results[:4] {
		if !result.Passed {
			t.Fatalf("directory check failed: %+v", result)
		}
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("stubbed binary reported missing: %+v", status)
		}
	}
}
