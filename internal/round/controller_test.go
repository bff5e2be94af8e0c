package round

import (
	"errors"
	"testing"
	"time"

	"github.com/brianng882/tunebits/internal/audio"
	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const step = 50 * time.Millisecond

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

type fixedGen struct {
	pattern game.Pattern
	levels  []game.Level
}

func (g *fixedGen) Generate(level game.Level, beats int) game.Pattern {
	g.levels = append(g.levels, level)
	p := g.pattern.Fit(beats)
	p.Level = level
	return p
}

type harness struct {
	t      *testing.T
	c      *Controller
	gen    *fixedGen
	device *audio.Silent
	ft     *fakeTime
}

func testConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.BPM = 120
	cfg.Beats = 4
	cfg.Cycles = 2
	return cfg
}

func newHarness(t *testing.T, cfg game.Config) *harness {
	gen := &fixedGen{pattern: game.MustPattern("test", 1, "x.x.")}
	device := &audio.Silent{}
	c, err := New(cfg, gen, device, nil)
	require.NoError(t, err)
	ft := &fakeTime{t: time.Unix(5000, 0)}
	c.SetNowFunc(ft.now)
	return &harness{t: t, c: c, gen: gen, device: device, ft: ft}
}

// advance moves the fake time forward by d, polling like the runner does.
func (h *harness) advance(d time.Duration) {
	for d > 0 {
		s := step
		if d < s {
			s = d
		}
		h.ft.t = h.ft.t.Add(s)
		d -= s
		h.c.Advance()
	}
}

func (h *harness) until(s game.RoundState) {
	for i := 0; i < 10000; i++ {
		if h.c.State() == s {
			return
		}
		h.advance(step)
	}
	h.t.Fatalf("never reached %v, stuck in %v", s, h.c.State())
}

// listen waits for the listening window and taps every expected slot when
// pass is set. It returns once the round is in Feedback.
func (h *harness) listen(pass bool) game.Result {
	h.until(game.Listening)
	origin := h.ft.t
	if pass {
		window := h.c.Snapshot().Pattern
		for i, hit := range window.Beats {
			if !hit {
				continue
			}
			h.advance(origin.Add(time.Duration(i) * 500 * time.Millisecond).Sub(h.ft.t))
			_, err := h.c.Tap(h.ft.t)
			require.NoError(h.t, err)
		}
	}
	h.until(game.Feedback)
	r := h.c.Snapshot().Result
	require.NotNil(h.t, r)
	return *r
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BPM = 0
	_, err := New(cfg, &fixedGen{}, &audio.Silent{}, nil)
	assert.True(t, errors.Is(err, game.ErrInvalidConfig))

	_, err = New(testConfig(), nil, &audio.Silent{}, nil)
	assert.True(t, errors.Is(err, game.ErrInvalidConfig))
}

func TestRoundWalksThroughStates(t *testing.T) {
	h := newHarness(t, testConfig())
	var states []game.RoundState
	h.c.OnChange = func(s game.Snapshot) {
		if len(states) == 0 || states[len(states)-1] != s.State {
			states = append(states, s.State)
		}
	}
	require.NoError(t, h.c.Start())

	result := h.listen(true)
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Accuracy)
	assert.Equal(t, []game.RoundState{
		game.CountdownToDemo,
		game.PlayingDemo,
		game.CountdownToListen,
		game.Listening,
		game.Evaluating,
		game.Feedback,
	}, states)

	snap := h.c.Snapshot()
	assert.Equal(t, 1, snap.Score)
	assert.Equal(t, 4, snap.Perfect)
	assert.Len(t, snap.Taps, 4)
	assert.Equal(t, "x.x.x.x.", snap.Pattern.String())
}

func TestCountdownTicksOncePerSecond(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	assert.Equal(t, 3, h.c.Snapshot().Countdown)

	h.advance(950 * time.Millisecond)
	assert.Equal(t, 3, h.c.Snapshot().Countdown)
	h.advance(step)
	assert.Equal(t, 2, h.c.Snapshot().Countdown)
	h.advance(2 * time.Second)
	assert.Equal(t, game.PlayingDemo, h.c.State())
}

func TestCountdownPauseKeepsRemainingTime(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.advance(500 * time.Millisecond)
	require.NoError(t, h.c.Pause())
	h.ft.t = h.ft.t.Add(10 * time.Second)
	h.c.Advance()
	assert.Equal(t, 3, h.c.Snapshot().Countdown)

	require.NoError(t, h.c.Resume())
	h.advance(450 * time.Millisecond)
	assert.Equal(t, 3, h.c.Snapshot().Countdown)
	h.advance(step)
	assert.Equal(t, 2, h.c.Snapshot().Countdown)
}

func TestDemoPlaysClicksAndHits(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.device.Reset()
	h.until(game.CountdownToListen)
	assert.Equal(t, 8, h.device.Count("click"))
	assert.Equal(t, 4, h.device.Count("hit"))
}

func TestListeningWithoutGuideOnlyClicks(t *testing.T) {
	cfg := testConfig()
	cfg.Guide = false
	h := newHarness(t, cfg)
	require.NoError(t, h.c.Start())
	h.until(game.CountdownToListen)
	h.device.Reset()
	h.until(game.Feedback)
	assert.Equal(t, 8, h.device.Count("click"))
	assert.Equal(t, 0, h.device.Count("hit"))
}

func TestListeningWindowIncludesBuffer(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.until(game.Listening)
	h.advance(4450 * time.Millisecond)
	assert.Equal(t, game.Listening, h.c.State())
	h.advance(step)
	assert.Equal(t, game.Feedback, h.c.State())
}

func TestNoTapsFailsRound(t *testing.T) {
	h := newHarness(t, testConfig())
	var reports []Report
	h.c.OnRoundComplete = func(r Report) { reports = append(reports, r) }
	require.NoError(t, h.c.Start())

	result := h.listen(false)
	assert.False(t, result.Passed)
	assert.Equal(t, score.MessageNoTaps, result.Message)
	assert.Equal(t, 4, result.Missed)
	assert.Equal(t, 0, h.c.Snapshot().Score)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Round)
	assert.Equal(t, 500*time.Millisecond, reports[0].Interval)
}

// Scenario D: the fourth pattern is asked for at level two once three
// rounds have passed.
func TestLevelUpAfterThreePasses(t *testing.T) {
	h := newHarness(t, testConfig())
	var scores []int
	h.c.OnScoreChanged = func(s int) { scores = append(scores, s) }
	require.NoError(t, h.c.Start())

	for i := 0; i < 3; i++ {
		require.True(t, h.listen(true).Passed)
		require.NoError(t, h.c.Continue())
	}
	assert.Equal(t, []game.Level{1, 1, 1, 2}, h.gen.levels)
	assert.Equal(t, []int{0, 1, 2, 3}, scores)
	assert.Equal(t, game.Level(2), h.c.Snapshot().Level)
}

func TestFailedRoundsDoNotLevelUp(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	for i := 0; i < 3; i++ {
		h.listen(false)
		require.NoError(t, h.c.Continue())
	}
	assert.Equal(t, []game.Level{1, 1, 1, 1}, h.gen.levels)
}

func TestLevelStopsAtMax(t *testing.T) {
	cfg := testConfig()
	cfg.LevelUpInterval = 1
	cfg.MaxLevel = 2
	h := newHarness(t, cfg)
	require.NoError(t, h.c.Start())
	for i := 0; i < 3; i++ {
		h.listen(true)
		require.NoError(t, h.c.Continue())
	}
	assert.Equal(t, []game.Level{1, 2, 2, 2}, h.gen.levels)
}

func TestCompleteAfterRoundBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRounds = 2
	h := newHarness(t, cfg)
	require.NoError(t, h.c.Start())

	h.listen(false)
	require.NoError(t, h.c.Continue())
	h.listen(false)
	require.NoError(t, h.c.Continue())
	assert.Equal(t, game.Complete, h.c.State())

	assert.True(t, errors.Is(h.c.Continue(), ErrInvalidState))
	assert.True(t, errors.Is(h.c.Start(), ErrInvalidState))

	require.NoError(t, h.c.PlayAgain())
	snap := h.c.Snapshot()
	assert.Equal(t, game.CountdownToDemo, snap.State)
	assert.Equal(t, 1, snap.Round)
	assert.Equal(t, 0, snap.Score)
}

func TestCompleteAtTargetScore(t *testing.T) {
	cfg := testConfig()
	cfg.TargetScore = 1
	h := newHarness(t, cfg)
	require.NoError(t, h.c.Start())
	h.listen(true)
	require.NoError(t, h.c.Continue())
	assert.Equal(t, game.Complete, h.c.State())
}

// Scenario E: the beat a tap lands on depends on musical time only.
func TestPauseDoesNotShiftBeatMapping(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.until(game.CountdownToListen)
	h.device.Reset()
	h.until(game.Listening)

	h.advance(time.Second)
	require.NoError(t, h.c.Pause())
	h.ft.t = h.ft.t.Add(time.Hour)
	h.c.Advance()
	require.NoError(t, h.c.Resume())
	h.advance(500 * time.Millisecond)

	tap, err := h.c.Tap(h.ft.t)
	require.NoError(t, err)
	assert.Equal(t, 3, tap.Index)
	assert.Equal(t, 1500*time.Millisecond, tap.Elapsed)
	assert.Equal(t, time.Duration(0), tap.Error)

	h.advance(2900 * time.Millisecond)
	assert.Equal(t, game.Listening, h.c.State())
	h.advance(100 * time.Millisecond)
	assert.Equal(t, game.Feedback, h.c.State())

	// Every beat sounded exactly once across the pause
	assert.Equal(t, 8, h.device.Count("click"))
}

func TestPausedControllerIgnoresTime(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.until(game.PlayingDemo)
	require.NoError(t, h.c.Pause())
	h.device.Reset()
	h.advance(time.Minute)
	assert.Equal(t, game.PlayingDemo, h.c.State())
	assert.Equal(t, 0, h.device.Count("click"))
	assert.True(t, h.c.Snapshot().Paused)
}

func TestWrongStateCallsFail(t *testing.T) {
	h := newHarness(t, testConfig())
	_, err := h.c.Tap(h.ft.t)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.True(t, errors.Is(h.c.Continue(), ErrInvalidState))
	assert.True(t, errors.Is(h.c.Replay(), ErrInvalidState))
	assert.True(t, errors.Is(h.c.Resume(), ErrInvalidState))

	require.NoError(t, h.c.Start())
	assert.True(t, errors.Is(h.c.Start(), ErrInvalidState))
	require.NoError(t, h.c.Pause())
	assert.True(t, errors.Is(h.c.Pause(), ErrInvalidState))
	require.NoError(t, h.c.Resume())

	h.until(game.Listening)
	require.NoError(t, h.c.Pause())
	_, err = h.c.Tap(h.ft.t)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestAudioFailureKeepsIdle(t *testing.T) {
	h := newHarness(t, testConfig())
	h.device.Fail = errors.New("blocked")
	err := h.c.Start()
	assert.True(t, errors.Is(err, ErrAudioUnavailable))
	assert.Equal(t, game.Idle, h.c.State())
	assert.Empty(t, h.gen.levels)

	h.device.Fail = nil
	require.NoError(t, h.c.Start())
	assert.Equal(t, game.CountdownToDemo, h.c.State())
}

func TestAbandonReleasesVoiceAndStrandsCallbacks(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.until(game.PlayingDemo)
	h.advance(time.Second)
	require.True(t, h.device.Held())

	h.c.Abandon()
	assert.Equal(t, game.Idle, h.c.State())
	assert.False(t, h.device.Held())
	assert.Equal(t, 1, h.device.Released())

	h.device.Reset()
	h.advance(time.Minute)
	assert.Empty(t, h.device.Events())
	assert.Equal(t, game.Idle, h.c.State())

	require.NoError(t, h.c.Start())
	assert.Equal(t, 2, h.device.Acquired())
}

func TestReplayFromFeedback(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.listen(true)
	h.device.Reset()

	require.NoError(t, h.c.Replay())
	h.advance(4 * time.Second)
	assert.Equal(t, 4, h.device.Count("hit"))
	assert.Equal(t, game.Feedback, h.c.State())
	assert.Equal(t, 1, h.c.Snapshot().Score)

	require.NoError(t, h.c.Replay())
	h.advance(time.Second)
	require.NoError(t, h.c.Continue())
	assert.Equal(t, game.CountdownToDemo, h.c.State())
}

type panicScorer struct {
	*score.DefaultScorer
}

func (panicScorer) Evaluate(game.Pattern, []game.Tap) game.Result {
	panic("index out of range")
}

func TestEvaluationPanicBecomesFeedback(t *testing.T) {
	h := newHarness(t, testConfig())
	h.c.SetScorer(panicScorer{score.NewScorer(150*time.Millisecond, 75)})
	require.NoError(t, h.c.Start())

	result := h.listen(true)
	assert.Equal(t, game.Feedback, h.c.State())
	assert.False(t, result.Passed)
	assert.Equal(t, score.MessageInternal, result.Message)
	assert.Equal(t, 0, h.c.Snapshot().Score)
}

func TestClockFailureBecomesFeedback(t *testing.T) {
	h := newHarness(t, testConfig())
	h.c.interval = 0
	require.NoError(t, h.c.Start())

	h.until(game.Feedback)
	snap := h.c.Snapshot()
	require.NotNil(t, snap.Result)
	assert.False(t, snap.Result.Passed)
	assert.Equal(t, score.MessageInternal, snap.Result.Message)
	assert.Equal(t, 4, snap.Result.Missed)
	assert.Equal(t, 0, snap.Score)

	require.NoError(t, h.c.Replay())
	h.advance(time.Second)
	assert.Equal(t, game.Feedback, h.c.State())
	require.NoError(t, h.c.Continue())
	assert.Equal(t, game.CountdownToDemo, h.c.State())
}

func TestSnapshotsAreCopies(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.c.Start())
	h.listen(true)

	snap := h.c.Snapshot()
	snap.Pattern.Beats[1] = true
	snap.Taps[0].Index = 99
	snap.Result.Accuracy = 0

	again := h.c.Snapshot()
	assert.Equal(t, "x.x.x.x.", again.Pattern.String())
	assert.Equal(t, 0, again.Taps[0].Index)
	assert.Equal(t, 100, again.Result.Accuracy)
}
