// Package stimulus holds the single shot ear training games: something is
// played, the player names it, and the answer is checked.
package stimulus

import (
	"errors"
	"math/rand"

	"github.com/brianng882/tunebits/internal/game"
)

var (
	ErrInvalidState  = errors.New("not allowed in this game state")
	ErrUnknownAnswer = errors.New("unknown answer")
)

// Stimulus is one question.
type Stimulus struct {
	ID       string   // What a correct answer names
	Label    string   // Human readable answer, e.g. "Perfect 5th"
	Prompt   string   // Shown while the question is open
	Notes    []int    // MIDI note numbers
	Harmonic bool     // Sound the notes together
	Answer   []string // Note names for games answered with a set of notes
}

// Option is something the player may answer with.
type Option struct {
	ID   string
	Name string
}

// Variant is one kind of question.
type Variant interface {
	Name() string
	Options(level game.Level) []Option
	Generate(level game.Level, rng *rand.Rand) Stimulus
	// Match reports whether answer is right for s. An answer that does not
	// name anything this variant knows is an ErrUnknownAnswer.
	Match(s Stimulus, answer string) (bool, error)
	// Describe names an answer for feedback.
	Describe(answer string) string
}

// Player sounds a stimulus.
type Player interface {
	PlayNotes(notes []int, harmonic bool)
	Stop()
}

// Variants lists every stimulus game by name.
func Variants() []Variant {
	return []Variant{Notes{}, Intervals{}, Chords{}, Scales{}}
}

func Lookup(name string) (Variant, bool) {
	for _, v := range Variants() {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// levelOf clamps l into the levels the variants know
func levelOf(l game.Level) game.Level {
	switch {
	case l < game.MinLevel:
		return game.MinLevel
	case l > game.MaxLevel:
		return game.MaxLevel
	}
	return l
}
