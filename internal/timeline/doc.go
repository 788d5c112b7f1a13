// Package timeline implements the temporal core of the rally detection
// pipeline: sliding-window generation, overlap resolution, and rally
// merging.
//
// The functions here are pure and synchronous. They operate on fully
// materialized slices and carry no I/O, configuration, or logging
// dependencies, which keeps them independently testable and lets callers
// classify windows concurrently before handing results in.
//
// Data flows Windows -> ResolveOverlaps -> MergeRallies -> FilterShort.
// Callers that receive classification results out of order do not need to
// sort them first; ResolveOverlaps and MergeRallies sort their inputs.
package timeline
