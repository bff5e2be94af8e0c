package stimulus

import (
	"fmt"
	"sort"
	"strings"
)

// Middle C
const C4 = 60

var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func isWhite(pc int) bool {
	return !strings.HasSuffix(NoteNames[pc], "#")
}

// PitchClass reads a note name such as "c", "F#" or "Bb".
func PitchClass(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: empty note name", ErrUnknownAnswer)
	}
	base := -1
	for i, n := range NoteNames {
		if len(n) == 1 && strings.EqualFold(n, name[:1]) {
			base = i
		}
	}
	if base < 0 {
		return 0, fmt.Errorf("%w: note %q", ErrUnknownAnswer, name)
	}
	switch name[1:] {
	case "":
	case "#", "♯":
		base++
	case "b", "♭":
		base--
	default:
		return 0, fmt.Errorf("%w: note %q", ErrUnknownAnswer, name)
	}
	return (base + 12) % 12, nil
}

// NoteName is the sharp spelling of a MIDI note, without octave.
func NoteName(midi int) string {
	return NoteNames[((midi%12)+12)%12]
}

// noteSet turns "C D, E" into its sorted set of sharp spellings.
func noteSet(answer string) ([]string, error) {
	fields := strings.FieldsFunc(answer, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	seen := map[int]bool{}
	for _, f := range fields {
		pc, err := PitchClass(f)
		if nil != err {
			return nil, err
		}
		seen[pc] = true
	}
	set := make([]string, 0, len(seen))
	for pc := range seen {
		set = append(set, NoteNames[pc])
	}
	sort.Strings(set)
	return set, nil
}
