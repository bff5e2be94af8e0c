package main

import (
	"context"
	"errors"
	"time"

	"github.com/brianng882/tunebits/internal/config"
	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/input"
	"github.com/brianng882/tunebits/internal/parser"
	"github.com/brianng882/tunebits/internal/pattern"
	"github.com/brianng882/tunebits/internal/render"
	"github.com/brianng882/tunebits/internal/round"
	"github.com/brianng882/tunebits/internal/score"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func playRhythm(s config.Settings, logger *logrus.Logger) error {
	pools := pattern.Pools
	if s.Patterns != "" {
		var psr parser.Parser = &parser.DefaultParser{}
		var err error
		pools, err = psr.Parse(s.Patterns)
		if nil != err {
			return err
		}
		logger.WithField("pools", len(pools)).Info("loaded pattern pools")
	}
	gen := pattern.NewGenerator(pools, s.Seed)

	device, err := newDevice(s, logger)
	if nil != err {
		return err
	}
	ctrl, err := round.New(s.Rhythm, gen, device, logger)
	if nil != err {
		return err
	}

	store, err := score.OpenHistory(s.DB)
	if nil != err {
		return err
	}
	defer store.Close()

	keys, closeKeys, err := input.Open(128)
	if nil != err {
		return err
	}
	defer func() {
		if err := closeKeys(); nil != err {
			logger.WithError(err).Warn("unable to close keyboard")
		}
	}()

	var r render.Renderer = &render.DefaultRenderer{}
	if err := r.Init(); nil != err {
		return err
	}
	defer r.Deinit()

	// Everything below the controller runs on the runner goroutine
	session := uuid.NewString()
	started := time.Now()
	ctrl.OnScoreChanged = func(score int) {
		if score == 0 {
			session = uuid.NewString()
			started = time.Now()
			logger.WithField("session", session).Info("new session")
		}
	}
	ctrl.OnRoundComplete = func(rep round.Report) {
		err := store.Save(score.Entry{
			Session:   session,
			Game:      config.Rhythm,
			Round:     rep.Round,
			Level:     rep.Level,
			Pattern:   rep.Pattern.String(),
			Interval:  rep.Interval,
			Tolerance: s.Rhythm.Tolerance,
			Result:    rep.Result,
			Taps:      rep.Taps,
		})
		if nil != err {
			logger.WithError(err).Error("unable to record round")
		}
	}
	ctrl.OnChange = func(snap game.Snapshot) {
		r.Rhythm(snap, time.Since(started))
	}

	runner := round.NewRunner(ctrl, logger)
	runner.OnError = func(err error) {
		r.Notice(err.Error() + ", press enter to try again")
		r.Rhythm(ctrl.Snapshot(), 0)
	}
	r.Rhythm(ctrl.Snapshot(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan input.Event, 128)
	done := make(chan error, 2)
	go func() { done <- runner.Run(ctx) }()
	go func() { done <- input.Read(ctx, keys, input.DefaultRhythmKeys(), events) }()

	for {
		select {
		case ev := <-events:
			switch ev.Action {
			case input.Tap:
				runner.Tap(ev.Time)
			case input.Pause:
				runner.Send(round.TogglePause)
			case input.Replay:
				runner.Send(round.Replay)
			case input.Continue:
				runner.Send(round.Next)
			case input.Quit:
				cancel()
				return wait(done, 2)
			}
		case err := <-done:
			cancel()
			if other := wait(done, 1); nil == err {
				err = other
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// wait collects n results from done, keeping the first real error
func wait(done <-chan error, n int) error {
	var first error
	for i := 0; i < n; i++ {
		err := <-done
		if nil == first && nil != err && !errors.Is(err, context.Canceled) {
			first = err
		}
	}
	return first
}
