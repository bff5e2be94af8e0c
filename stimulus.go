package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianng882/tunebits/internal/config"
	"github.com/brianng882/tunebits/internal/game"
	"github.com/brianng882/tunebits/internal/input"
	"github.com/brianng882/tunebits/internal/render"
	"github.com/brianng882/tunebits/internal/score"
	"github.com/brianng882/tunebits/internal/stimulus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func playStimulus(s config.Settings, v stimulus.Variant, logger *logrus.Logger) error {
	device, err := newDevice(s, logger)
	if nil != err {
		return err
	}
	if err := device.Resume(); nil != err {
		return fmt.Errorf("unable to start audio: %w", err)
	}
	voice, err := device.Acquire()
	if nil != err {
		return fmt.Errorf("unable to start audio: %w", err)
	}
	defer voice.Release()

	g, err := stimulus.New(v, voice, s.Stimulus, logger)
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

	session := uuid.NewString()
	started := time.Now()
	g.OnScoreChanged = func(score int) {
		if score == 0 {
			session = uuid.NewString()
			started = time.Now()
		}
	}
	g.OnAnswered = func(o stimulus.Outcome) {
		if err := store.Save(outcomeEntry(session, v.Name(), o)); nil != err {
			logger.WithError(err).Error("unable to record answer")
		}
	}

	lineKeys := &input.LineKeys{}
	redraw := func() {
		r.Stimulus(g.Snapshot(), lineKeys.Line(), time.Since(started))
	}
	redraw()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan input.Event, 128)
	done := make(chan error, 1)
	go func() { done <- input.Read(ctx, keys, lineKeys, events) }()

	for {
		select {
		case ev := <-events:
			r.Notice("")
			var err error
			switch ev.Action {
			case input.Quit:
				g.Abandon()
				cancel()
				<-done
				return nil
			case input.Replay:
				err = g.Replay()
			case input.Continue:
				switch g.State() {
				case stimulus.Idle:
					err = g.Start()
				case stimulus.Complete:
					err = g.PlayAgain()
				default:
					err = g.Continue()
				}
			case input.Submit:
				_, err = g.Answer(ev.Text)
				if errors.Is(err, stimulus.ErrUnknownAnswer) {
					r.Notice(err.Error())
					err = nil
				}
			}
			if err := tolerate(logger, ev.Action.String(), err); nil != err {
				return err
			}
			redraw()
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func outcomeEntry(session, name string, o stimulus.Outcome) score.Entry {
	r := game.Result{
		Expected: 1,
		Taps:     1,
		Message:  o.Message,
		Passed:   o.Correct,
	}
	if o.Correct {
		r.Accuracy = 100
		r.Correct = 1
	} else {
		r.Missed = 1
	}
	return score.Entry{
		Session: session,
		Game:    name,
		Round:   o.Round,
		Level:   o.Level,
		Result:  r,
	}
}
