// Package preflight verifies the environment before a pipeline run:
// directories are writable, enough disk headroom exists for staging clips,
// the required binaries resolve, and the classification server answers.
package preflight
