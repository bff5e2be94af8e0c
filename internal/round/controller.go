// Package round runs rhythm rounds: a demo of the pattern, a listening
// window collecting taps, then evaluation and level progression.
package round

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/brianng882/tunebits/internal/audio"
	"github.com/brianng882/tunebits/internal/clock"
	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/pattern"
	"github.com/brianng882/tunebits/internal/score"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidState     = errors.New("not allowed in this round state")
	ErrAudioUnavailable = errors.New("audio unavailable")
)

// Report is what a finished round hands to whoever keeps score.
type Report struct {
	Round    int
	Level    game.Level
	Pattern  game.Pattern // The listening window, all cycles
	Interval time.Duration
	Taps     []game.Tap
	Result   game.Result
}

// Controller owns one game session. It is not safe for concurrent use; a
// Runner drives it from a single goroutine.
type Controller struct {
	OnChange        func(game.Snapshot)
	OnScoreChanged  func(score int)
	OnRoundComplete func(Report)

	cfg      game.Config
	interval time.Duration
	patterns pattern.Generator
	scorer   score.Scorer
	device   audio.Device
	voice    audio.Voice
	log      logrus.FieldLogger
	now      func() time.Time

	state   game.RoundState
	paused  bool
	round   int
	level   game.Level
	score   int
	perfect int

	pattern   game.Pattern
	window    game.Pattern
	clock     *clock.BeatClock
	collector *score.Collector
	perfectAt map[int]bool
	result    *game.Result
	beat      int
	replaying bool

	countdown     int
	countdownAt   time.Time
	countdownLeft time.Duration

	// Bumped whenever the phase changes. Scheduled work carries the value
	// it was scheduled under and does nothing once it is stale.
	generation uint64
}

// New checks cfg and returns an idle controller. A nil logger discards.
func New(cfg game.Config, patterns pattern.Generator, device audio.Device, logger logrus.FieldLogger) (*Controller, error) {
	if err := cfg.Validate(); nil != err {
		return nil, err
	}
	if nil == patterns || nil == device {
		return nil, fmt.Errorf("%w: pattern generator and audio device are required", game.ErrInvalidConfig)
	}
	if nil == logger {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Controller{
		cfg:      cfg,
		interval: cfg.BeatInterval(),
		patterns: patterns,
		scorer:   score.NewScorer(cfg.Tolerance, cfg.PassThreshold),
		device:   device,
		log:      logger,
		now:      time.Now,
		level:    game.MinLevel,
		beat:     -1,
	}, nil
}

// SetNowFunc replaces the wall clock, for tests.
func (c *Controller) SetNowFunc(f func() time.Time) {
	c.now = f
}

func (c *Controller) Config() game.Config {
	return c.cfg
}

func (c *Controller) State() game.RoundState {
	return c.state
}

func (c *Controller) Paused() bool {
	return c.paused
}

// Snapshot copies the observable state.
func (c *Controller) Snapshot() game.Snapshot {
	s := game.Snapshot{
		State:     c.state,
		Paused:    c.paused,
		Round:     c.round,
		Level:     c.level,
		Score:     c.score,
		Countdown: c.countdown,
		Pattern:   c.window,
		Beat:      c.beat,
		Perfect:   c.perfect,
		Result:    c.result,
	}
	if nil != c.collector {
		s.Taps = c.collector.Taps()
	}
	return s.Clone()
}

// Start begins a new session from Idle. If the audio output cannot be
// brought up the session stays Idle and Start may be tried again.
func (c *Controller) Start() error {
	if c.state != game.Idle {
		return fmt.Errorf("unable to start from %v: %w", c.state, ErrInvalidState)
	}
	return c.begin()
}

// PlayAgain starts a fresh session once the last one is Complete.
func (c *Controller) PlayAgain() error {
	if c.state != game.Complete {
		return fmt.Errorf("unable to play again from %v: %w", c.state, ErrInvalidState)
	}
	return c.begin()
}

func (c *Controller) begin() error {
	if err := c.acquire(); nil != err {
		return err
	}
	c.paused = false
	c.score = 0
	c.level = game.MinLevel
	c.round = 0
	c.perfect = 0
	c.log.WithField("bpm", c.cfg.BPM).Info("session started")
	if nil != c.OnScoreChanged {
		c.OnScoreChanged(c.score)
	}
	c.nextRound()
	return nil
}

func (c *Controller) acquire() error {
	if nil != c.voice {
		return nil
	}
	if err := c.device.Resume(); nil != err {
		c.log.WithError(err).Warn("audio output not ready")
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	voice, err := c.device.Acquire()
	if nil != err {
		c.log.WithError(err).Warn("unable to acquire audio voice")
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	c.voice = voice
	return nil
}

func (c *Controller) nextRound() {
	c.round++
	c.pattern = c.patterns.Generate(c.level, c.cfg.Beats)
	c.window = c.pattern.Unroll(c.cfg.Cycles)
	c.collector = nil
	c.perfectAt = nil
	c.result = nil
	c.log.WithFields(logrus.Fields{
		"round":   c.round,
		"level":   c.level,
		"pattern": c.pattern.String(),
	}).Debug("round generated")
	c.enterCountdown(game.CountdownToDemo)
}

// Continue leaves Feedback for the next round, or for Complete once the
// target score or the round budget is reached.
func (c *Controller) Continue() error {
	if c.state != game.Feedback {
		return fmt.Errorf("unable to continue from %v: %w", c.state, ErrInvalidState)
	}
	if c.paused {
		return fmt.Errorf("unable to continue while paused: %w", ErrInvalidState)
	}
	c.stopClock()
	c.replaying = false
	if c.score >= c.cfg.TargetScore || c.round >= c.cfg.MaxRounds {
		c.transition(game.Complete)
		c.log.WithFields(logrus.Fields{"score": c.score, "rounds": c.round}).Info("session complete")
		c.emit()
		return nil
	}
	c.nextRound()
	return nil
}

// Replay plays the round's pattern again from Feedback without touching
// the score.
func (c *Controller) Replay() error {
	if c.state != game.Feedback || c.paused {
		return fmt.Errorf("unable to replay from %v: %w", c.state, ErrInvalidState)
	}
	c.replaying = true
	c.startClock()
	c.emit()
	return nil
}

// Tap records a tap made at wall time at. Taps are only taken while
// Listening and not paused.
func (c *Controller) Tap(at time.Time) (game.Tap, error) {
	if c.state != game.Listening || c.paused || nil == c.collector {
		return game.Tap{}, fmt.Errorf("unable to tap while %v: %w", c.state, ErrInvalidState)
	}
	tap := c.collector.Record(at, c.clock.ElapsedAt(at))
	if tap.Accurate && tap.Expected && !c.perfectAt[tap.Index] {
		c.perfectAt[tap.Index] = true
		c.perfect++
	}
	if nil != c.voice {
		c.voice.PlayTap()
	}
	c.emit()
	return tap, nil
}

// Pause freezes the session in whatever state it is in. All scheduled
// work is dropped and rebuilt from musical time on Resume.
func (c *Controller) Pause() error {
	if c.paused {
		return fmt.Errorf("unable to pause: %w", ErrInvalidState)
	}
	if nil != c.clock && c.clock.State() == clock.Running {
		if err := c.clock.Pause(); nil != err {
			return err
		}
	}
	if c.isCountdown() {
		c.countdownLeft = c.countdownAt.Sub(c.now())
		if c.countdownLeft < 0 {
			c.countdownLeft = 0
		}
	}
	if nil != c.voice {
		c.voice.Stop()
	}
	c.paused = true
	c.generation++
	c.log.WithField("state", c.state).Debug("paused")
	c.emit()
	return nil
}

func (c *Controller) Resume() error {
	if !c.paused {
		return fmt.Errorf("unable to resume: %w", ErrInvalidState)
	}
	c.paused = false
	c.generation++
	if c.isCountdown() {
		c.countdownAt = c.now().Add(c.countdownLeft)
	}
	if nil != c.clock && c.clock.State() == clock.Paused {
		if err := c.clock.Resume(); nil != err {
			return err
		}
		c.schedule(c.clock.Elapsed(), false)
	}
	c.log.WithField("state", c.state).Debug("resumed")
	c.emit()
	return nil
}

// Abandon drops the session: every pending callback is cancelled, the
// audio voice is released and the controller returns to Idle.
func (c *Controller) Abandon() {
	c.stopClock()
	c.release()
	c.replaying = false
	c.paused = false
	c.countdown = 0
	c.collector = nil
	c.transition(game.Idle)
	c.emit()
}

// Close abandons the session.
func (c *Controller) Close() error {
	c.Abandon()
	return nil
}

func (c *Controller) release() {
	if nil != c.voice {
		c.voice.Stop()
		c.voice.Release()
		c.voice = nil
	}
}

// Advance does whatever is due. The runner calls it every poll interval.
func (c *Controller) Advance() {
	if c.paused {
		return
	}
	if c.isCountdown() {
		c.tickCountdown()
	}
	if nil != c.clock {
		c.clock.Poll()
	}
}

func (c *Controller) isCountdown() bool {
	return c.state == game.CountdownToDemo || c.state == game.CountdownToListen
}

func (c *Controller) enterCountdown(s game.RoundState) {
	c.stopClock()
	c.transition(s)
	c.countdown = c.cfg.CountdownTicks
	c.countdownAt = c.now().Add(c.cfg.CountdownTick)
	c.emit()
}

func (c *Controller) tickCountdown() {
	now := c.now()
	for c.countdown > 0 && !now.Before(c.countdownAt) {
		c.countdown--
		c.countdownAt = c.countdownAt.Add(c.cfg.CountdownTick)
		c.emit()
	}
	if c.countdown > 0 {
		return
	}
	if c.state == game.CountdownToDemo {
		c.transition(game.PlayingDemo)
	} else {
		c.transition(game.Listening)
		c.collector = score.NewCollector(c.scorer, c.window, c.interval)
		c.perfectAt = map[int]bool{}
	}
	c.startClock()
	c.emit()
}

// transition moves to s and strands everything scheduled for the old phase.
func (c *Controller) transition(s game.RoundState) {
	c.log.WithFields(logrus.Fields{
		"from":       c.state,
		"to":         s,
		"round":      c.round,
		"generation": c.generation,
	}).Debug("transition")
	c.state = s
	c.generation++
	c.beat = -1
}

func (c *Controller) startClock() {
	c.stopClock()
	c.clock = clock.New(c.now)
	if err := c.clock.Start(c.interval); nil != err {
		c.fail(err)
		return
	}
	c.schedule(0, true)
}

// fail drops the current phase and lands in Feedback with an internal
// error result. The score is left alone.
func (c *Controller) fail(err error) {
	c.log.WithError(err).WithFields(logrus.Fields{
		"round":      c.round,
		"level":      c.level,
		"generation": c.generation,
	}).Error("unable to start beat clock")
	c.stopClock()
	c.replaying = false
	if c.state == game.Feedback {
		return
	}
	result := game.Result{
		Expected: c.window.Expected(),
		Missed:   c.window.Expected(),
		Message:  score.MessageInternal,
	}
	if nil != c.collector {
		result.Taps = c.collector.Len()
	}
	c.result = &result
	c.transition(game.Feedback)
}

func (c *Controller) stopClock() {
	if nil != c.clock {
		c.clock.Cancel()
	}
	c.beat = -1
}

// phaseEnd is the musical time at which the current phase is over.
func (c *Controller) phaseEnd() time.Duration {
	if c.state == game.Listening {
		return c.cfg.ListenWindow(c.window)
	}
	return time.Duration(c.window.Len()) * c.interval
}

// schedule queues the current phase's beats after musical time from (and
// at it, when inclusive), and the end of the phase. Beats that were due
// before from are skipped, never replayed; the phase end always fires.
func (c *Controller) schedule(from time.Duration, inclusive bool) {
	g := c.generation
	guard := func(fn func()) func() {
		return func() {
			if g != c.generation || c.paused {
				return
			}
			fn()
		}
	}
	for i := range c.window.Beats {
		at := time.Duration(i) * c.interval
		if at < from || (!inclusive && at == from) {
			continue
		}
		i := i
		if err := c.clock.ScheduleAfter(at, guard(func() { c.onBeat(i, at) })); nil != err {
			c.log.WithError(err).Error("unable to schedule beat")
		}
	}
	end := c.phaseEnd()
	if end < from {
		end = from
	}
	if err := c.clock.ScheduleAfter(end, guard(c.finishPhase)); nil != err {
		c.log.WithError(err).Error("unable to schedule phase end")
	}
}

func (c *Controller) onBeat(i int, at time.Duration) {
	c.beat = i
	if nil != c.voice {
		c.voice.PlayClick(at)
		if c.window.Hit(i) && (c.state != game.Listening || c.cfg.Guide) {
			c.voice.PlayPatternHit(at)
		}
	}
	c.emit()
}

func (c *Controller) finishPhase() {
	switch {
	case c.state == game.PlayingDemo:
		c.enterCountdown(game.CountdownToListen)
	case c.state == game.Listening:
		c.stopClock()
		c.transition(game.Evaluating)
		c.emit()
		c.evaluate()
	case c.state == game.Feedback && c.replaying:
		c.stopClock()
		c.replaying = false
		c.emit()
	}
}

func (c *Controller) evaluate() {
	taps := c.collector.Taps()
	result, err := c.safeEvaluate(taps)
	if nil != err {
		c.log.WithError(err).WithFields(logrus.Fields{
			"round":   c.round,
			"level":   c.level,
			"pattern": c.window.String(),
		}).Error("unable to evaluate round")
		result = game.Result{
			Expected: c.window.Expected(),
			Missed:   c.window.Expected(),
			Taps:     len(taps),
			Message:  score.MessageInternal,
		}
	}
	c.result = &result

	if result.Passed {
		c.score++
		if c.score%c.cfg.LevelUpInterval == 0 && c.level < c.cfg.MaxLevel {
			c.level++
			c.log.WithField("level", c.level).Info("level up")
		}
	}
	c.transition(game.Feedback)
	c.log.WithFields(logrus.Fields{
		"round":    c.round,
		"accuracy": result.Accuracy,
		"passed":   result.Passed,
	}).Info("round evaluated")

	if result.Passed && nil != c.OnScoreChanged {
		c.OnScoreChanged(c.score)
	}
	if nil != c.OnRoundComplete {
		c.OnRoundComplete(Report{
			Round:    c.round,
			Level:    c.pattern.Level,
			Pattern:  c.window.Clone(),
			Interval: c.interval,
			Taps:     taps,
			Result:   result.Clone(),
		})
	}
	c.emit()
}

func (c *Controller) safeEvaluate(taps []game.Tap) (result game.Result, err error) {
	defer func() {
		if r := recover(); nil != r {
			err = fmt.Errorf("evaluation panicked: %v", r)
		}
	}()
	return c.scorer.Evaluate(c.window, taps), nil
}

func (c *Controller) emit() {
	if nil != c.OnChange {
		c.OnChange(c.Snapshot())
	}
}

// SetScorer replaces the scorer built from the configuration. It only
// affects rounds that start listening afterwards.
func (c *Controller) SetScorer(s score.Scorer) {
	c.scorer = s
}
