package timeline

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter marks window or merge parameters that are not usable.
// Callers fail fast on it; parameters are never silently clamped.
var ErrInvalidParameter = errors.New("invalid parameter")

// ShotType is the camera framing the classifier reported for a window.
type ShotType string

const (
	ShotFullCourt ShotType = "full_court"
	ShotCloseUp   ShotType = "close_up"
	ShotOther     ShotType = "other"
)

// ParseShotType maps a classifier string to a known shot type. Unknown
// values collapse to ShotOther so they never count as gameplay.
func ParseShotType(value string) ShotType {
	switch ShotType(value) {
	case ShotFullCourt, ShotCloseUp:
		return ShotType(value)
	default:
		return ShotOther
	}
}

// Window is one fixed-length, time-stamped span handed to the classifier.
// Start/End are seconds from the beginning of the video. InRally and
// ShotType stay zero until the window has been classified.
type Window struct {
	Start       float64
	End         float64
	InRally     bool
	ShotType    ShotType
	SourceIndex int
}

// Gameplay reports whether the window counts toward a rally. Only
// full-court rally windows qualify; close-ups and replays do not,
// regardless of InRally.
func (w Window) Gameplay() bool {
	return w.InRally && w.ShotType == ShotFullCourt
}

// minUsableFraction of the slide interval a shortened final window must
// retain to be emitted. Anything shorter carries almost no new footage.
const minUsableFraction = 0.5

// Windows produces the sliding-window sequence over a video of the given
// duration. Starts are exact multiples of slideInterval; each window is
// clipDuration long except possibly the last, which is shortened to end at
// the video duration and dropped entirely when the remainder is below half
// the slide interval.
//
// A non-positive duration yields an empty sequence without error; it is the
// empty input, not a failure. Non-positive clipDuration or slideInterval is
// a hard error.
func Windows(duration, clipDuration, slideInterval float64) ([]Window, error) {
	if clipDuration <= 0 {
		return nil, fmt.Errorf("%w: clip duration %g must be positive", ErrInvalidParameter, clipDuration)
	}
	if slideInterval <= 0 {
		return nil, fmt.Errorf("%w: slide interval %g must be positive", ErrInvalidParameter, slideInterval)
	}
	if duration <= 0 {
		return nil, nil
	}

	var windows []Window
	for i := 0; ; i++ {
		// Multiply rather than accumulate so starts stay exact across
		// thousands of windows.
		start := float64(i) * slideInterval
		if start >= duration {
			break
		}
		end := start + clipDuration
		if end > duration {
			if duration-start < slideInterval*minUsableFraction {
				break
			}
			end = duration
		}
		windows = append(windows, Window{Start: start, End: end, SourceIndex: len(windows)})
	}
	return windows, nil
}
