package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Beach Finals: Day 2", "Beach Finals- Day 2"},
		{"a/b\\c", "a-b-c"},
		{"what?<>|\"", "what"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Beach Finals 2026", "beach_finals_2026"},
		{"___", "unknown"},
		{"", "unknown"},
		{"OK-name_1", "ok-name_1"},
	}
	for _, tc := range tests {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
