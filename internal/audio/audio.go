// Package audio plays the game's sounds. A Device is unlocked once with
// Resume, then hands out one Voice at a time to whoever runs a session.
package audio

import (
	"errors"
	"time"
)

var (
	ErrUnavailable = errors.New("audio output unavailable")
	ErrBusy        = errors.New("audio voice already held")
	ErrReleased    = errors.New("audio voice released")
)

type Device interface {
	// Resume brings the output up. It may fail until the platform allows
	// audio, in which case the caller should try again later.
	Resume() error
	Ready() bool
	Acquire() (Voice, error)
}

// Voice plays on logical channels. A new sound on a channel cuts off the
// previous one on the same channel.
type Voice interface {
	PlayClick(at time.Duration)
	PlayPatternHit(at time.Duration)
	PlayTap()
	PlayNotes(notes []int, harmonic bool)
	Stop()
	Release()
}

type channel int

const (
	metronome channel = iota
	drum
	tap
	tones
)
