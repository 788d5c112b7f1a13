// Package annotator serves the correction API for reviewing detected
// rallies.
//
// The API reads reconciled records (human corrections win over machine
// output) and writes only the corrected namespace: a PUT replaces the
// video's corrected record wholesale, a DELETE reverts to the auto record.
// Video bytes stream straight from the source file so the review UI can
// scrub the original footage.
package annotator
