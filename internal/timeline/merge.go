package timeline

import (
	"fmt"
	"sort"
)

// SegmentStatus records whether a rally segment came out of the detection
// pipeline or was finalized by a human.
type SegmentStatus string

const (
	StatusAuto      SegmentStatus = "auto"
	StatusCorrected SegmentStatus = "corrected"
)

// RallySegment is a maximal run of gameplay time, possibly bridging
// non-gameplay gaps shorter than the merge tolerance. Start < End always.
// Auto segments start with Keep=true as tentative candidates pending review.
type RallySegment struct {
	Start  float64       `json:"start"`
	End    float64       `json:"end"`
	Status SegmentStatus `json:"status"`
	Keep   bool          `json:"keep"`
}

// Duration returns the segment length in seconds.
func (s RallySegment) Duration() float64 {
	return s.End - s.Start
}

// MergeRallies folds an ordered atom sequence into rally segments with a
// single forward scan. Two gameplay atoms separated by a gap of at most
// gapTolerance seconds (exactly gapTolerance included) land in one segment;
// a longer gap closes the open segment and opens a new one. Non-gameplay
// atoms never close a segment on their own; whether a gap was decisive is
// only known once the next gameplay atom arrives or the scan ends.
//
// Empty input yields an empty result without error. Atoms are sorted
// defensively by start.
func MergeRallies(atoms []Atom, gapTolerance float64) ([]RallySegment, error) {
	if gapTolerance < 0 {
		return nil, fmt.Errorf("%w: gap tolerance %g must not be negative", ErrInvalidParameter, gapTolerance)
	}

	sorted := make([]Atom, len(atoms))
	copy(sorted, atoms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var segments []RallySegment
	var open *RallySegment
	for _, atom := range sorted {
		if !atom.Gameplay || atom.End <= atom.Start {
			continue
		}
		if open == nil {
			open = &RallySegment{Start: atom.Start, End: atom.End, Status: StatusAuto, Keep: true}
			continue
		}
		if atom.Start-open.End <= gapTolerance {
			if atom.End > open.End {
				open.End = atom.End
			}
			continue
		}
		segments = append(segments, *open)
		open = &RallySegment{Start: atom.Start, End: atom.End, Status: StatusAuto, Keep: true}
	}
	if open != nil {
		segments = append(segments, *open)
	}
	return segments, nil
}

// FilterShort drops segments shorter than minDuration seconds. A
// non-positive minDuration keeps everything. Kept separate from
// MergeRallies so merging stays idempotent over its own output.
func FilterShort(segments []RallySegment, minDuration float64) []RallySegment {
	if minDuration <= 0 {
		out := make([]RallySegment, len(segments))
		copy(out, segments)
		return out
	}
	out := make([]RallySegment, 0, len(segments))
	for _, seg := range segments {
		if seg.Duration() >= minDuration {
			out = append(out, seg)
		}
	}
	return out
}

// Atoms converts rally segments back into all-gameplay atoms. Useful for
// re-merging a previously merged timeline.
func Atoms(segments []RallySegment) []Atom {
	atoms := make([]Atom, 0, len(segments))
	for _, seg := range segments {
		atoms = append(atoms, Atom{Start: seg.Start, End: seg.End, Gameplay: true})
	}
	return atoms
}
