package score

import (
	"time"

	"github.com/brianng882/tunebits/internal/game"
)

type Scorer interface {
	// Classify a single tap made at elapsed musical time against the pattern
	RecordTap(at time.Time, pattern game.Pattern, interval, elapsed time.Duration) game.Tap

	// Summarize an ordered list of taps
	Evaluate(pattern game.Pattern, taps []game.Tap) game.Result

	// Signed distance from the beat-th slot to elapsed
	Distance(interval time.Duration, beat int, elapsed time.Duration) time.Duration
}

const (
	DefaultTolerance     = 150 * time.Millisecond
	DefaultPassThreshold = 75
)

// Feedback messages
const (
	MessagePassed   = "Great rhythm!"
	MessageClose    = "Good effort, keep practicing!"
	MessageSpam     = "Too many taps! Listen carefully to the pattern."
	MessageMissed   = "Try to match the rhythm more closely."
	MessageNoTaps   = "no taps recorded"
	MessageNoBeats  = "Nothing to tap this time."
	MessageInternal = "Something went wrong evaluating this round."
)
