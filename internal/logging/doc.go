// Package logging assembles structured slog loggers and formatting helpers
// used across rallycut.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so stage code emits data with a
// consistent shape. A no-op logger is provided for tests and wiring code
// that cannot fail.
package logging
