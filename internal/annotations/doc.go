// Package annotations persists rally segments in SQLite and decides
// precedence between machine and human output.
//
// Two logically separate namespaces are keyed by video identifier: the
// auto namespace holds what the detection pipeline produced, the corrected
// namespace holds what a human finalized. The pipeline only ever writes
// auto; the correction API only ever writes corrected. Reconcile resolves
// reads: once a corrected record exists it is authoritative wholesale and
// the auto record is never re-applied over it. Getting that precedence
// wrong silently destroys human-authored ground truth, so it lives here as
// an explicit, tested operation rather than as glue in a handler.
//
// Schema changes bump schemaVersion in schema.go; users clear the database
// to adopt the new schema.
package annotations
