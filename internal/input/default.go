// Package input turns key presses into timestamped game events.
package input

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
)

type Action int

const (
	None Action = iota
	Tap
	Pause
	Continue
	Replay
	Quit
	Submit
	Edit
)

func (a Action) String() string {
	switch a {
	case Tap:
		return "tap"
	case Pause:
		return "pause"
	case Continue:
		return "continue"
	case Replay:
		return "replay"
	case Quit:
		return "quit"
	case Submit:
		return "submit"
	case Edit:
		return "edit"
	}
	return "none"
}

type Event struct {
	Action Action
	Rune   rune
	Key    keyboard.Key
	Time   time.Time // When the key was read
	Text   string    // The answer line, for Submit
}

// Mapper decides what a key press means.
type Mapper interface {
	Map(ev keyboard.KeyEvent) Event
}

// Open puts the terminal in raw mode and starts reading keys. The returned
// function restores the terminal.
func Open(buffer int) (<-chan keyboard.KeyEvent, func() error, error) {
	keys, err := keyboard.GetKeys(buffer)
	if nil != err {
		return nil, nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	return keys, keyboard.Close, nil
}

// Read maps keys to events and stamps each with the time it was read,
// until keys closes or ctx is done. Keys mapping to None are dropped.
func Read(ctx context.Context, keys <-chan keyboard.KeyEvent, m Mapper, events chan<- Event) error {
	return ReadAt(ctx, keys, m, events, time.Now)
}

func ReadAt(ctx context.Context, keys <-chan keyboard.KeyEvent, m Mapper, events chan<- Event, now func() time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			at := now()
			if nil != key.Err {
				return fmt.Errorf("unable to read keyboard input: %w", key.Err)
			}
			ev := m.Map(key)
			if ev.Action == None {
				continue
			}
			ev.Time = at
			select {
			case events <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// RhythmKeys maps keys for tapping along: any tap rune or space taps.
type RhythmKeys struct {
	Taps string
}

func DefaultRhythmKeys() RhythmKeys {
	return RhythmKeys{Taps: "jkfd"}
}

func (k RhythmKeys) Map(ev keyboard.KeyEvent) Event {
	e := Event{Rune: ev.Rune, Key: ev.Key}
	switch ev.Key {
	case keyboard.KeySpace:
		e.Action = Tap
	case keyboard.KeyEnter:
		e.Action = Continue
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		e.Action = Quit
	case 0:
		switch {
		case strings.ContainsRune(k.Taps, ev.Rune):
			e.Action = Tap
		case ev.Rune == 'p':
			e.Action = Pause
		case ev.Rune == 'r':
			e.Action = Replay
		case ev.Rune == 'q':
			e.Action = Quit
		}
	}
	return e
}

// LineKeys collects typed answers. Enter submits the line, or continues
// when nothing was typed; Tab replays the question.
type LineKeys struct {
	line []rune
}

func (k *LineKeys) Line() string {
	return string(k.line)
}

func (k *LineKeys) Map(ev keyboard.KeyEvent) Event {
	e := Event{Rune: ev.Rune, Key: ev.Key}
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		e.Action = Quit
	case keyboard.KeyTab:
		e.Action = Replay
	case keyboard.KeyEnter:
		text := strings.TrimSpace(string(k.line))
		k.line = k.line[:0]
		if text == "" {
			e.Action = Continue
		} else {
			e.Action = Submit
			e.Text = text
		}
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		if len(k.line) > 0 {
			k.line = k.line[:len(k.line)-1]
		}
		e.Action = Edit
		e.Text = string(k.line)
	case keyboard.KeySpace:
		k.line = append(k.line, ' ')
		e.Action = Edit
		e.Text = string(k.line)
	case 0:
		k.line = append(k.line, ev.Rune)
		e.Action = Edit
		e.Text = string(k.line)
	}
	return e
}
