// Package cutter exports kept rally segments as standalone clips.
//
// Exports read the reconciled record for a video: human corrections, when
// present, drive the cut list. Segments marked as discarded are skipped.
// One failed segment does not abort the batch; the result reports which
// clips succeeded and which failed so a re-run can fill the gaps.
package cutter
