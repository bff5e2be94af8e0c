package game

import "time"

// Tap is one classified physical tap. It is never modified once recorded.
type Tap struct {
	Time     time.Time     // When the tap happened
	Elapsed  time.Duration // Musical time at the tap, pauses excluded
	Index    int           // The nearest beat slot
	Error    time.Duration // Distance to the nearest beat slot, never negative
	Accurate bool          // Error is inside the tolerance
	Expected bool          // The slot exists and should be tapped

	OutOfRange bool // The slot lies outside the pattern
}
