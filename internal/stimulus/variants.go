package stimulus

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/brianng882/tunebits/internal/game"
)

// Notes asks for the name of a single note around middle C.
type Notes struct{}

func (Notes) Name() string { return "notes" }

func (Notes) pitchClasses(level game.Level) []int {
	switch levelOf(level) {
	case 1:
		return []int{0, 2, 4, 5, 7}
	case 2:
		pcs := []int{}
		for pc := range NoteNames {
			if isWhite(pc) {
				pcs = append(pcs, pc)
			}
		}
		return pcs
	}
	return []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
}

func (n Notes) Options(level game.Level) []Option {
	opts := []Option{}
	for _, pc := range n.pitchClasses(level) {
		opts = append(opts, Option{ID: NoteNames[pc], Name: NoteNames[pc]})
	}
	return opts
}

func (n Notes) Generate(level game.Level, rng *rand.Rand) Stimulus {
	pcs := n.pitchClasses(level)
	pc := pcs[rng.Intn(len(pcs))]
	return Stimulus{
		ID:     NoteNames[pc],
		Label:  NoteNames[pc],
		Prompt: "Which note is this?",
		Notes:  []int{C4 + pc},
	}
}

func (Notes) Match(s Stimulus, answer string) (bool, error) {
	pc, err := PitchClass(answer)
	if nil != err {
		return false, err
	}
	return NoteNames[pc] == s.ID, nil
}

func (Notes) Describe(answer string) string {
	pc, err := PitchClass(answer)
	if nil != err {
		return answer
	}
	return NoteNames[pc]
}

type interval struct {
	id, name  string
	semitones int
}

var intervals = []interval{
	{"P1", "Perfect Unison", 0},
	{"m2", "Minor 2nd", 1},
	{"M2", "Major 2nd", 2},
	{"m3", "Minor 3rd", 3},
	{"M3", "Major 3rd", 4},
	{"P4", "Perfect 4th", 5},
	{"TT", "Tritone", 6},
	{"P5", "Perfect 5th", 7},
	{"m6", "Minor 6th", 8},
	{"M6", "Major 6th", 9},
	{"m7", "Minor 7th", 10},
	{"M7", "Major 7th", 11},
	{"P8", "Perfect Octave", 12},
}

// Intervals plays two notes one after the other and asks for the distance
// between them.
type Intervals struct{}

func (Intervals) Name() string { return "intervals" }

func (Intervals) available(level game.Level) []interval {
	var ids []string
	switch levelOf(level) {
	case 1:
		ids = []string{"P1", "P4", "P5", "P8"}
	case 2:
		ids = []string{"P1", "m2", "M2", "m3", "M3", "P4", "P5", "P8"}
	default:
		return intervals
	}
	out := []interval{}
	for _, i := range intervals {
		for _, id := range ids {
			if i.id == id {
				out = append(out, i)
			}
		}
	}
	return out
}

func findInterval(id string) (interval, bool) {
	for _, i := range intervals {
		if i.id == id {
			return i, true
		}
	}
	return interval{}, false
}

func (v Intervals) Options(level game.Level) []Option {
	opts := []Option{}
	for _, i := range v.available(level) {
		opts = append(opts, Option{ID: i.id, Name: i.name})
	}
	return opts
}

func (v Intervals) Generate(level game.Level, rng *rand.Rand) Stimulus {
	avail := v.available(level)
	i := avail[rng.Intn(len(avail))]
	// C3 to B3
	start := 48 + rng.Intn(12)
	return Stimulus{
		ID:     i.id,
		Label:  fmt.Sprintf("%v (%v semitones)", i.name, i.semitones),
		Prompt: "Which interval is this?",
		Notes:  []int{start, start + i.semitones},
	}
}

func (Intervals) Match(s Stimulus, answer string) (bool, error) {
	i, ok := findInterval(strings.TrimSpace(answer))
	if !ok {
		return false, fmt.Errorf("%w: interval %q", ErrUnknownAnswer, answer)
	}
	return i.id == s.ID, nil
}

func (Intervals) Describe(answer string) string {
	if i, ok := findInterval(strings.TrimSpace(answer)); ok {
		return i.name
	}
	return answer
}

type chord struct {
	id, name  string
	semitones []int
	level     game.Level
}

var chords = []chord{
	{"maj", "Major", []int{0, 4, 7}, 1},
	{"min", "Minor", []int{0, 3, 7}, 1},
	{"dim", "Diminished", []int{0, 3, 6}, 2},
	{"aug", "Augmented", []int{0, 4, 8}, 2},
	{"7", "Dominant 7th", []int{0, 4, 7, 10}, 3},
	{"maj7", "Major 7th", []int{0, 4, 7, 11}, 3},
	{"min7", "Minor 7th", []int{0, 3, 7, 10}, 3},
}

// Roots chords are built on, white keys of the fourth octave
var chordRoots = []int{0, 2, 4, 5, 7, 9, 11}

// Chords sounds a chord and asks for its quality.
type Chords struct{}

func (Chords) Name() string { return "chords" }

func (Chords) available(level game.Level) []chord {
	out := []chord{}
	for _, c := range chords {
		if c.level <= levelOf(level) {
			out = append(out, c)
		}
	}
	return out
}

func findChord(id string) (chord, bool) {
	for _, c := range chords {
		if c.id == id {
			return c, true
		}
	}
	return chord{}, false
}

func (v Chords) Options(level game.Level) []Option {
	opts := []Option{}
	for _, c := range v.available(level) {
		opts = append(opts, Option{ID: c.id, Name: c.name})
	}
	return opts
}

func (v Chords) Generate(level game.Level, rng *rand.Rand) Stimulus {
	avail := v.available(level)
	c := avail[rng.Intn(len(avail))]
	root := chordRoots[rng.Intn(len(chordRoots))]
	notes := make([]int, len(c.semitones))
	for i, s := range c.semitones {
		notes[i] = C4 + root + s
	}
	return Stimulus{
		ID:       c.id,
		Label:    fmt.Sprintf("%v %v", NoteNames[root], c.name),
		Prompt:   "Which chord is this?",
		Notes:    notes,
		Harmonic: true,
	}
}

func (Chords) Match(s Stimulus, answer string) (bool, error) {
	c, ok := findChord(strings.TrimSpace(answer))
	if !ok {
		return false, fmt.Errorf("%w: chord %q", ErrUnknownAnswer, answer)
	}
	return c.id == s.ID, nil
}

func (Chords) Describe(answer string) string {
	if c, ok := findChord(strings.TrimSpace(answer)); ok {
		return c.name
	}
	return answer
}

type scale struct {
	id        string
	semitones []int
	level     game.Level
}

var scales = []scale{
	{"major", []int{0, 2, 4, 5, 7, 9, 11}, 1},
	{"minor", []int{0, 2, 3, 5, 7, 8, 10}, 1},
	{"harmonic minor", []int{0, 2, 3, 5, 7, 8, 11}, 2},
	{"melodic minor", []int{0, 2, 3, 5, 7, 9, 11}, 2},
	{"pentatonic", []int{0, 2, 4, 7, 9}, 3},
	{"blues", []int{0, 3, 5, 6, 7, 10}, 3},
}

// Scales names a scale and a root and asks for the notes in it. The answer
// is a set of note names, order and spelling do not matter.
type Scales struct{}

func (Scales) Name() string { return "scales" }

func (Scales) available(level game.Level) []scale {
	out := []scale{}
	for _, s := range scales {
		if s.level <= levelOf(level) {
			out = append(out, s)
		}
	}
	return out
}

// Options are the notes to build a scale from.
func (Scales) Options(level game.Level) []Option {
	opts := make([]Option, len(NoteNames))
	for i, n := range NoteNames {
		opts[i] = Option{ID: n, Name: n}
	}
	return opts
}

func (v Scales) Generate(level game.Level, rng *rand.Rand) Stimulus {
	avail := v.available(level)
	s := avail[rng.Intn(len(avail))]
	root := rng.Intn(12)
	notes := make([]int, len(s.semitones))
	names := make([]string, len(s.semitones))
	for i, st := range s.semitones {
		notes[i] = C4 + root + st
		names[i] = NoteName(root + st)
	}
	answer := append([]string{}, names...)
	sort.Strings(answer)
	label := fmt.Sprintf("%v %v", NoteNames[root], s.id)
	return Stimulus{
		ID:     strings.Join(answer, " "),
		Label:  fmt.Sprintf("%v: %v", label, strings.Join(names, " ")),
		Prompt: fmt.Sprintf("Build the %v scale", label),
		Notes:  notes,
		Answer: answer,
	}
}

func (Scales) Match(s Stimulus, answer string) (bool, error) {
	set, err := noteSet(answer)
	if nil != err {
		return false, err
	}
	if len(set) == 0 {
		return false, fmt.Errorf("%w: no notes in %q", ErrUnknownAnswer, answer)
	}
	if len(set) != len(s.Answer) {
		return false, nil
	}
	for i := range set {
		if set[i] != s.Answer[i] {
			return false, nil
		}
	}
	return true, nil
}

func (Scales) Describe(answer string) string {
	set, err := noteSet(answer)
	if nil != err || len(set) == 0 {
		return answer
	}
	return strings.Join(set, " ")
}
