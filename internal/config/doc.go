// Package config loads, validates, and normalizes the rallycut
// configuration.
//
// Configuration is TOML with a Default() baseline, optional file overrides,
// environment fallbacks for secrets, tilde expansion for paths, and a
// Validate pass that rejects unusable values before any stage runs.
// Detection and merge parameters (clip duration, slide interval, gap
// tolerance) live here rather than as constants so callers pass them into
// the core explicitly.
package config
