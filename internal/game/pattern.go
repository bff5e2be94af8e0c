package game

import (
	"fmt"
	"strings"
)

// Pattern is a rhythm, one slot per beat. A true slot should be tapped.
type Pattern struct {
	Name  string
	Level Level
	Beats []bool
}

// Len returns the number of beat slots
func (p Pattern) Len() int {
	return len(p.Beats)
}

// Hit reports whether slot i should be tapped. Out of range slots never are.
func (p Pattern) Hit(i int) bool {
	return i >= 0 && i < len(p.Beats) && p.Beats[i]
}

// Expected counts the slots that should be tapped.
func (p Pattern) Expected() int {
	n := 0
	for _, b := range p.Beats {
		if b {
			n++
		}
	}
	return n
}

func (p Pattern) Clone() Pattern {
	beats := make([]bool, len(p.Beats))
	copy(beats, p.Beats)
	return Pattern{Name: p.Name, Level: p.Level, Beats: beats}
}

// Unroll repeats the pattern cycles times, giving the slot layout of a
// whole listening window.
func (p Pattern) Unroll(cycles int) Pattern {
	if cycles < 1 {
		cycles = 1
	}
	beats := make([]bool, 0, len(p.Beats)*cycles)
	for c := 0; c < cycles; c++ {
		beats = append(beats, p.Beats...)
	}
	return Pattern{Name: p.Name, Level: p.Level, Beats: beats}
}

// Fit tiles or truncates the pattern to exactly n slots.
func (p Pattern) Fit(n int) Pattern {
	if n <= 0 || len(p.Beats) == 0 {
		return Pattern{Name: p.Name, Level: p.Level}
	}
	beats := make([]bool, n)
	for i := range beats {
		beats[i] = p.Beats[i%len(p.Beats)]
	}
	return Pattern{Name: p.Name, Level: p.Level, Beats: beats}
}

// String renders the pattern as a row of 'x' (hit) and '.' (rest).
func (p Pattern) String() string {
	var b strings.Builder
	for _, hit := range p.Beats {
		if hit {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// ParseRow reads a row of hits and rests. 'x', 'X' and '1' are hits,
// '.', '-' and '0' are rests, spaces are ignored.
func ParseRow(row string) ([]bool, error) {
	beats := []bool{}
	for i, c := range row {
		switch c {
		case 'x', 'X', '1':
			beats = append(beats, true)
		case '.', '-', '0':
			beats = append(beats, false)
		case ' ', '\t', '|':
		default:
			return nil, fmt.Errorf("unexpected %q at column %d", c, i)
		}
	}
	return beats, nil
}

// MustPattern builds a pattern from a row, panicking on a malformed row.
// It is meant for package level tables.
func MustPattern(name string, level Level, row string) Pattern {
	beats, err := ParseRow(row)
	if nil != err {
		panic(err)
	}
	return Pattern{Name: name, Level: level, Beats: beats}
}
