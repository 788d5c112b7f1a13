package testsupport

import (
	"testing"

	"rallycut/internal/annotations"
	"rallycut/internal/config"
)

// MustOpenStore opens an annotations.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *annotations.Store {
	t.Helper()

	store, err := annotations.Open(cfg)
	if err != nil {
		t.Fatalf("annotations.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
