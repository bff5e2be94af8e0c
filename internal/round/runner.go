package round

import (
	"context"
	"errors"
	"time"

	"github.com/brianng882/tunebits/internal/game"
	"github.com/sirupsen/logrus"
)

type Command int

const (
	Start Command = iota
	TogglePause
	Continue
	Replay
	PlayAgain
	Abandon
	// Next starts, continues or plays again, whichever the state allows
	Next
)

func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case TogglePause:
		return "toggle-pause"
	case Continue:
		return "continue"
	case Replay:
		return "replay"
	case PlayAgain:
		return "play-again"
	case Abandon:
		return "abandon"
	case Next:
		return "next"
	}
	return "unknown"
}

// Runner drives a Controller from one goroutine and is the boundary where
// user input meets the controller. Input that does not fit the current
// state is dropped instead of reported; other failures go to OnError.
type Runner struct {
	OnError func(error)

	ctrl *Controller
	log  logrus.FieldLogger
	taps chan time.Time
	cmds chan Command
}

func NewRunner(ctrl *Controller, logger logrus.FieldLogger) *Runner {
	if nil == logger {
		logger = ctrl.log
	}
	return &Runner{
		ctrl: ctrl,
		log:  logger,
		taps: make(chan time.Time, 128),
		cmds: make(chan Command, 16),
	}
}

// Tap queues a tap made at wall time at. It never blocks.
func (r *Runner) Tap(at time.Time) {
	select {
	case r.taps <- at:
	default:
		r.log.Warn("tap queue full, dropping tap")
	}
}

// Send queues a command. It never blocks.
func (r *Runner) Send(cmd Command) {
	select {
	case r.cmds <- cmd:
	default:
		r.log.WithField("command", cmd).Warn("command queue full, dropping command")
	}
}

// Run polls the controller until ctx is done, then abandons the session.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.ctrl.Config().PollInterval)
	defer ticker.Stop()
	defer r.ctrl.Abandon()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.ctrl.Advance()
		case at := <-r.taps:
			r.HandleTap(at)
		case cmd := <-r.cmds:
			r.Handle(cmd)
		}
	}
}

// HandleTap passes a tap to the controller. Taps outside the listening
// window are ignored.
func (r *Runner) HandleTap(at time.Time) {
	r.ctrl.Advance()
	_, err := r.ctrl.Tap(at)
	r.report("tap", err)
}

func (r *Runner) Handle(cmd Command) {
	var err error
	switch cmd {
	case Start:
		err = r.ctrl.Start()
	case TogglePause:
		if r.ctrl.Paused() {
			err = r.ctrl.Resume()
		} else {
			err = r.ctrl.Pause()
		}
	case Continue:
		err = r.ctrl.Continue()
	case Replay:
		err = r.ctrl.Replay()
	case PlayAgain:
		err = r.ctrl.PlayAgain()
	case Abandon:
		r.ctrl.Abandon()
	case Next:
		switch r.ctrl.State() {
		case game.Idle:
			err = r.ctrl.Start()
		case game.Complete:
			err = r.ctrl.PlayAgain()
		default:
			err = r.ctrl.Continue()
		}
	}
	r.report(cmd.String(), err)
}

func (r *Runner) report(action string, err error) {
	if nil == err {
		return
	}
	if errors.Is(err, ErrInvalidState) {
		r.log.WithError(err).WithField("action", action).Debug("ignored")
		return
	}
	r.log.WithError(err).WithField("action", action).Warn("action failed")
	if nil != r.OnError {
		r.OnError(err)
	}
}
