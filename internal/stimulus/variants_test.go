package stimulus

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchClass(t *testing.T) {
	data := []struct {
		name string
		pc   int
		ok   bool
	}{
		{"C", 0, true},
		{"c", 0, true},
		{"C#", 1, true},
		{"Db", 1, true},
		{"Cb", 11, true},
		{"bb", 10, true},
		{" F# ", 6, true},
		{"H", 0, false},
		{"C##", 0, false},
		{"", 0, false},
	}
	for _, d := range data {
		pc, err := PitchClass(d.name)
		if !d.ok {
			assert.True(t, errors.Is(err, ErrUnknownAnswer), d.name)
			continue
		}
		require.NoError(t, err, d.name)
		assert.Equal(t, d.pc, pc, d.name)
	}
}

func TestOptionsGrowWithLevel(t *testing.T) {
	data := []struct {
		v      Variant
		counts [3]int
	}{
		{Notes{}, [3]int{5, 7, 12}},
		{Intervals{}, [3]int{4, 8, 13}},
		{Chords{}, [3]int{2, 4, 7}},
		{Scales{}, [3]int{12, 12, 12}},
	}
	for _, d := range data {
		for i, n := range d.counts {
			assert.Len(t, d.v.Options(game.Level(i+1)), n, "%v level %v", d.v.Name(), i+1)
		}
		// Out of range levels are clamped
		assert.Len(t, d.v.Options(0), d.counts[0])
		assert.Len(t, d.v.Options(9), d.counts[2])
	}
}

func TestGeneratedStimuliMatchTheirOwnID(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, v := range Variants() {
		for level := game.MinLevel; level <= game.MaxLevel; level++ {
			for i := 0; i < 50; i++ {
				s := v.Generate(level, rng)
				require.NotEmpty(t, s.Notes, v.Name())
				ok, err := v.Match(s, s.ID)
				require.NoError(t, err)
				assert.True(t, ok, "%v %v", v.Name(), s.ID)

				ids := map[string]bool{}
				for _, o := range v.Options(level) {
					ids[o.ID] = true
				}
				if v.Name() != "scales" {
					assert.True(t, ids[s.ID], "%v generated %v outside level %v", v.Name(), s.ID, level)
				}
			}
		}
	}
}

func TestIntervalNotes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		s := Intervals{}.Generate(3, rng)
		iv, ok := findInterval(s.ID)
		require.True(t, ok)
		require.Len(t, s.Notes, 2)
		assert.Equal(t, iv.semitones, s.Notes[1]-s.Notes[0])
		assert.GreaterOrEqual(t, s.Notes[0], 48)
		assert.Less(t, s.Notes[0], 60)
		assert.False(t, s.Harmonic)
	}
}

func TestChordsAreHarmonic(t *testing.T) {
	s := Chords{}.Generate(1, rand.New(rand.NewSource(3)))
	assert.True(t, s.Harmonic)
	assert.Len(t, s.Notes, 3)
}

func TestMatchRejectsUnknownAnswers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, v := range Variants() {
		s := v.Generate(1, rng)
		_, err := v.Match(s, "nonsense")
		assert.True(t, errors.Is(err, ErrUnknownAnswer), v.Name())
	}
}

func TestBlankAnswersStayOpen(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, v := range Variants() {
		s := v.Generate(1, rng)
		for _, answer := range []string{"", "   ", " , "} {
			_, err := v.Match(s, answer)
			assert.True(t, errors.Is(err, ErrUnknownAnswer), "%v %q", v.Name(), answer)
		}
	}
}

func TestScaleAnswerIsASet(t *testing.T) {
	s := Stimulus{Answer: []string{"A", "B", "C", "D", "E", "F", "G"}}
	data := []struct {
		answer string
		ok     bool
	}{
		{"C D E F G A B", true},
		{"B,A,G,F,E,D,C", true},
		{"c d e f g a b c", true},
		{"Cb C D E F G A", true},
		{"C D E F G A", false},
		{"C D E F G A A#", false},
	}
	for _, d := range data {
		ok, err := Scales{}.Match(s, d.answer)
		require.NoError(t, err, d.answer)
		assert.Equal(t, d.ok, ok, d.answer)
	}
}

func TestScaleStimulus(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		s := Scales{}.Generate(3, rng)
		assert.Len(t, s.Answer, len(s.Notes))
		assert.Contains(t, s.Prompt, "Build the")
		assert.Equal(t, s.Notes[0]-C4, mustPitch(t, NoteName(s.Notes[0])))
	}
}

func mustPitch(t *testing.T, name string) int {
	pc, err := PitchClass(name)
	require.NoError(t, err)
	return pc
}

func TestLookup(t *testing.T) {
	v, ok := Lookup("chords")
	require.True(t, ok)
	assert.Equal(t, "chords", v.Name())
	_, ok = Lookup("rhythm")
	assert.False(t, ok)
}
