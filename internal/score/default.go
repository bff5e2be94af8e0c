package score

import (
	"math"
	"time"

	"github.com/brianng882/tunebits/internal/game"
)

type DefaultScorer struct {
	Tolerance     time.Duration // Taps strictly closer than this are accurate
	PassThreshold int           // Percent of expected slots needing an accurate tap
}

func NewScorer(tolerance time.Duration, passThreshold int) *DefaultScorer {
	return &DefaultScorer{Tolerance: tolerance, PassThreshold: passThreshold}
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

func (s *DefaultScorer) tolerance() time.Duration {
	if s.Tolerance <= 0 {
		return DefaultTolerance
	}
	return s.Tolerance
}

// Distance is positive when elapsed is after the slot
func (s *DefaultScorer) Distance(interval time.Duration, beat int, elapsed time.Duration) time.Duration {
	return elapsed - time.Duration(beat)*interval
}

// Nearest is the slot closest to elapsed, halves rounding away from zero
func (s *DefaultScorer) Nearest(interval time.Duration, elapsed time.Duration) int {
	if interval <= 0 {
		return 0
	}
	return int(math.Round(float64(elapsed) / float64(interval)))
}

func (s *DefaultScorer) RecordTap(at time.Time, pattern game.Pattern, interval, elapsed time.Duration) game.Tap {
	beat := s.Nearest(interval, elapsed)
	d := abs(s.Distance(interval, beat, elapsed))
	return game.Tap{
		Time:       at,
		Elapsed:    elapsed,
		Index:      beat,
		Error:      d,
		Accurate:   d < s.tolerance(),
		Expected:   pattern.Hit(beat),
		OutOfRange: beat < 0 || beat >= pattern.Len(),
	}
}

// Evaluate walks the taps in the order they happened. Every expected slot
// ends up either correct or missed; an expected slot is correct when at
// least one accurate tap landed on it, later taps on it are not penalized.
func (s *DefaultScorer) Evaluate(pattern game.Pattern, taps []game.Tap) game.Result {
	r := game.Result{
		Expected: pattern.Expected(),
		Taps:     len(taps),
		Marks:    make([]game.Judgement, pattern.Len()),
	}

	if r.Expected > 0 && len(taps) == 0 {
		for i := range pattern.Beats {
			if pattern.Hit(i) {
				r.Marks[i] = game.Missed
			}
		}
		r.Missed = r.Expected
		r.Message = MessageNoTaps
		return r
	}

	satisfied := make([]bool, pattern.Len())
	for _, tap := range taps {
		inRange := tap.Index >= 0 && tap.Index < pattern.Len()
		switch {
		case !pattern.Hit(tap.Index):
			r.Extra++
			if inRange {
				r.Marks[tap.Index] = game.Extra
			}
		case !tap.Accurate:
			r.Mistimed++
			if !satisfied[tap.Index] {
				r.Marks[tap.Index] = game.Mistimed
			}
		default:
			if !satisfied[tap.Index] {
				satisfied[tap.Index] = true
				r.Correct++
			}
			r.Marks[tap.Index] = game.Accurate
		}
	}

	for i := range pattern.Beats {
		if pattern.Hit(i) && !satisfied[i] {
			r.Missed++
			if r.Marks[i] == game.None {
				r.Marks[i] = game.Missed
			}
		}
	}

	if r.Expected == 0 {
		r.Accuracy = 100
		r.Passed = true
		r.Message = MessageNoBeats
		return r
	}

	r.Accuracy = int(math.Round(100 * float64(r.Correct) / float64(r.Expected)))
	r.Passed = r.Accuracy >= s.PassThreshold && r.Extra <= allowedExtra(r.Expected)
	r.Message = message(r)
	return r
}

// allowedExtra is a quarter of the expected taps, rounded up
func allowedExtra(expected int) int {
	return (expected + 3) / 4
}

func message(r game.Result) string {
	switch {
	case r.Passed:
		return MessagePassed
	case r.Accuracy >= 50:
		return MessageClose
	case 2*r.Taps > 3*r.Expected:
		return MessageSpam
	}
	return MessageMissed
}
