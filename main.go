package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/brianng882/tunebits/internal/audio"
	"github.com/brianng882/tunebits/internal/config"
	"github.com/brianng882/tunebits/internal/round"
	"github.com/brianng882/tunebits/internal/stimulus"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(os.Args[1:]); nil != err {
		logrus.Fatalln(err)
	}
}

func run(args []string) error {
	settings, err := config.Parse(args)
	if nil != err {
		return err
	}

	logger, closeLog, err := newLogger(settings)
	if nil != err {
		return err
	}
	defer closeLog()

	switch settings.Command {
	case config.History:
		return listHistory(settings, os.Stdout)
	case config.Rhythm:
		return playRhythm(settings, logger)
	}
	v, ok := stimulus.Lookup(settings.Command)
	if !ok {
		return fmt.Errorf("unknown game %v", settings.Command)
	}
	return playStimulus(settings, v, logger)
}

// The terminal belongs to the renderer, so logs go to a file
func newLogger(s config.Settings) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetLevel(s.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	if s.LogFile == "" {
		logger.SetOutput(io.Discard)
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if nil != err {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() {
		if err := f.Close(); nil != err {
			fmt.Fprintln(os.Stderr, "unable to close log file:", err)
		}
	}, nil
}

func newDevice(s config.Settings, logger logrus.FieldLogger) (audio.Device, error) {
	if s.Mute {
		return &audio.Silent{}, nil
	}
	sp := &audio.Speaker{}
	if s.ClickSample != "" {
		b, err := audio.LoadSample(s.ClickSample, audio.SampleRate)
		if nil != err {
			return nil, err
		}
		sp.ClickSample = b
	}
	if s.HitSample != "" {
		b, err := audio.LoadSample(s.HitSample, audio.SampleRate)
		if nil != err {
			return nil, err
		}
		sp.HitSample = b
	}
	logger.WithFields(logrus.Fields{
		"click": s.ClickSample,
		"hit":   s.HitSample,
	}).Debug("audio device ready")
	return sp, nil
}

// tolerate drops errors that only mean a key was pressed at the wrong
// moment.
func tolerate(logger logrus.FieldLogger, action string, err error) error {
	if nil == err {
		return nil
	}
	if errors.Is(err, round.ErrInvalidState) || errors.Is(err, stimulus.ErrInvalidState) {
		logger.WithError(err).WithField("action", action).Debug("ignored")
		return nil
	}
	return err
}
