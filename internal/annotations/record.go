package annotations

import (
	"fmt"
	"time"

	"rallycut/internal/timeline"
)

// Record is the persisted unit: a video identifier plus its ordered rally
// segments.
type Record struct {
	VideoID  string                  `json:"video_id"`
	Segments []timeline.RallySegment `json:"segments"`
}

// VideoMeta captures how a video's auto record was produced.
type VideoMeta struct {
	VideoID         string
	SourcePath      string
	DurationSeconds float64
	ClipDuration    float64
	SlideInterval   float64
	DetectedAt      time.Time
}

// VideoSummary is a listing row for CLI and API consumers.
type VideoSummary struct {
	VideoID         string
	SourcePath      string
	DurationSeconds float64
	AutoSegments    int
	CorrectedCount  int
	Corrected       bool
}

// Reconcile decides which record is authoritative. A corrected record wins
// wholesale; there is no field-level merge with the auto record. With only
// an auto record, that is the result. With neither, the result is an empty
// record, not an error. Inputs are never mutated.
func Reconcile(auto, corrected *Record) Record {
	if corrected != nil {
		return cloneRecord(*corrected)
	}
	if auto != nil {
		return cloneRecord(*auto)
	}
	return Record{}
}

func cloneRecord(record Record) Record {
	segments := make([]timeline.RallySegment, len(record.Segments))
	copy(segments, record.Segments)
	record.Segments = segments
	return record
}

// ValidateSegments checks that a record's segments form a usable timeline:
// each start before its end, ordered, and pairwise non-overlapping.
func ValidateSegments(segments []timeline.RallySegment) error {
	for i, seg := range segments {
		if seg.Start < 0 {
			return fmt.Errorf("segment %d starts before zero: %g", i, seg.Start)
		}
		if seg.Start >= seg.End {
			return fmt.Errorf("segment %d has start %g >= end %g", i, seg.Start, seg.End)
		}
		if i > 0 && seg.Start < segments[i-1].End {
			return fmt.Errorf("segment %d starting at %g overlaps previous segment ending at %g", i, seg.Start, segments[i-1].End)
		}
	}
	return nil
}
