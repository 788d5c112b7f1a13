// Package services defines shared utilities consumed by the pipeline
// stages and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video identifiers, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures from
//     external tools, validation, and configuration stay distinguishable
//     at the CLI boundary.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
