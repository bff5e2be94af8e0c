package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianng882/tunebits/internal/config"
	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/score"
	"github.com/brianng882/tunebits/internal/stimulus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeEntry(t *testing.T) {
	e := outcomeEntry("s1", "chords", stimulus.Outcome{Round: 2, Level: 1, Correct: true, Message: "Correct!"})
	assert.Equal(t, "chords", e.Game)
	assert.Equal(t, 100, e.Result.Accuracy)
	assert.True(t, e.Result.Passed)
	assert.Equal(t, 1, e.Result.Correct)

	e = outcomeEntry("s1", "chords", stimulus.Outcome{Round: 3})
	assert.Equal(t, 0, e.Result.Accuracy)
	assert.Equal(t, 1, e.Result.Missed)
}

func TestListHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	store, err := score.OpenHistory(db)
	require.NoError(t, err)
	start := time.Now().Add(-time.Hour)
	for i, passed := range []bool{true, false} {
		require.NoError(t, store.Save(score.Entry{
			Session:   "abc",
			Game:      config.Rhythm,
			Round:     i + 1,
			Level:     1,
			Pattern:   "x.x.",
			Interval:  500 * time.Millisecond,
			Tolerance: 150 * time.Millisecond,
			Result:    game.Result{Accuracy: 50 + 50*btoi(passed), Passed: passed},
			PlayedAt:  start.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.Close())

	var out bytes.Buffer
	require.NoError(t, listHistory(config.Settings{DB: db, HistoryGame: config.Rhythm, HistoryLimit: 5}, &out))
	assert.Contains(t, out.String(), "1/2")
	assert.Contains(t, out.String(), "1st")
	assert.Contains(t, out.String(), "x.x.")

	out.Reset()
	require.NoError(t, listHistory(config.Settings{DB: db, HistoryGame: "notes", HistoryLimit: 5}, &out))
	assert.Contains(t, out.String(), "No notes sessions yet")
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
