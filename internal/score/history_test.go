package score

import (
	"testing"
	"time"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var compactTests = []struct {
	in       []game.Tap
	expected []TapsCompact
}{
	{in: []game.Tap{}, expected: []TapsCompact{}},
	{
		in: []game.Tap{{Index: 0, Elapsed: 100}, {Index: 3, Elapsed: 200}},
		expected: []TapsCompact{
			{Index: 0, Times: []time.Duration{100}},
			{Index: 1, Times: []time.Duration{}},
			{Index: 2, Times: []time.Duration{}},
			{Index: 3, Times: []time.Duration{200}},
		},
	},
	{
		in: []game.Tap{{Index: 1, Elapsed: 2}, {Index: 1, Elapsed: 1}},
		expected: []TapsCompact{
			{Index: 0, Times: []time.Duration{}},
			{Index: 1, Times: []time.Duration{2, 1}},
		},
	},
}

func TestCompactTaps(t *testing.T) {
	for _, test := range compactTests {
		out := compactTaps(test.in)
		if !assert.Equal(t, test.expected, out) {
			t.Log("in", test.in)
		}
	}
}

func TestUncompactTapsOrdersByTime(t *testing.T) {
	in := []TapsCompact{
		{Index: 0, Times: []time.Duration{10, 900}},
		{Index: 1, Times: []time.Duration{480}},
	}
	assert.Equal(t, []time.Duration{10, 480, 900}, uncompactTaps(in))
}

func openMemory(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := OpenHistory(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHistorySaveAndLoad(t *testing.T) {
	store := openMemory(t)
	s := NewScorer(ms(150), 75)
	p := game.MustPattern("", 1, "x.x.").Unroll(2)
	taps := record(s, p, ms(500), 0, ms(1000), ms(4000))
	result := s.Evaluate(p, taps)
	played := time.Unix(1700000000, 0)

	require.NoError(t, store.Save(Entry{
		Session:   "s1",
		Game:      "rhythm",
		Round:     1,
		Level:     1,
		Pattern:   p.String(),
		Interval:  ms(500),
		Tolerance: ms(150),
		Result:    result,
		Taps:      taps,
		PlayedAt:  played,
	}))

	entries, err := store.Load("s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "rhythm", e.Game)
	assert.Equal(t, game.Level(1), e.Level)
	assert.Equal(t, played, e.PlayedAt)
	assert.Equal(t, result.Accuracy, e.Result.Accuracy)
	assert.Equal(t, result.Extra, e.Result.Extra)
	assert.False(t, e.Result.Passed)

	require.Len(t, e.Taps, 3)
	for i := range taps {
		assert.Equal(t, taps[i].Index, e.Taps[i].Index)
		assert.Equal(t, taps[i].Accurate, e.Taps[i].Accurate)
		assert.Equal(t, taps[i].Elapsed, e.Taps[i].Elapsed)
	}
	// Replaying the stored taps scores the same
	assert.Equal(t, result.Correct, s.Evaluate(p, e.Taps).Correct)

	none, err := store.Load("missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistoryBest(t *testing.T) {
	store := openMemory(t)
	at := time.Unix(1700000000, 0)
	save := func(session string, round int, accuracy int, passed bool) {
		at = at.Add(time.Minute)
		require.NoError(t, store.Save(Entry{
			Session:  session,
			Game:     "rhythm",
			Round:    round,
			Result:   game.Result{Accuracy: accuracy, Passed: passed},
			PlayedAt: at,
		}))
	}
	save("a", 1, 100, true)
	save("a", 2, 40, false)
	save("b", 1, 90, true)
	save("b", 2, 80, true)
	save("c", 1, 100, true)
	save("c", 2, 100, true)
	require.NoError(t, store.Save(Entry{Session: "d", Game: "chords", Result: game.Result{Passed: true}}))

	best, err := store.Best("rhythm", 10)
	require.NoError(t, err)
	require.Len(t, best, 3)
	assert.Equal(t, "c", best[0].Session)
	assert.Equal(t, "b", best[1].Session)
	assert.Equal(t, "a", best[2].Session)
	assert.Equal(t, 2, best[0].Score)
	assert.Equal(t, 2, best[2].Rounds)
	assert.InDelta(t, 70.0, best[2].Accuracy, 0.001)
	assert.Equal(t, time.Minute, best[0].Duration())

	best, err = store.Best("rhythm", 1)
	require.NoError(t, err)
	assert.Len(t, best, 1)
}
