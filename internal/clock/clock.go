// Package clock keeps musical time for a round. Musical time only advances
// while the clock runs, so pausing a round never moves a beat.
package clock

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return "unknown"
}

var (
	ErrRunning    = errors.New("clock already started")
	ErrNotRunning = errors.New("clock is not running")
	ErrNotPaused  = errors.New("clock is not paused")
	ErrInterval   = errors.New("beat interval must be positive")
)

type event struct {
	at  time.Duration
	gen uint64
	fn  func()
}

// BeatClock is driven by Poll. Scheduled callbacks fire from Poll once the
// elapsed musical time reaches them, so they are late by at most one poll
// interval and never early.
type BeatClock struct {
	now      func() time.Time
	interval time.Duration
	state    State
	origin   time.Time
	banked   time.Duration // Musical time accumulated before origin

	// Callbacks carry the generation they were scheduled in. Pause and
	// Cancel bump it, which strands everything queued before.
	gen     uint64
	pending []event
}

// New returns a stopped clock reading time from now, or the wall clock when
// now is nil.
func New(now func() time.Time) *BeatClock {
	if nil == now {
		now = time.Now
	}
	return &BeatClock{now: now}
}

func (c *BeatClock) State() State {
	return c.state
}

func (c *BeatClock) Interval() time.Duration {
	return c.interval
}

// Generation changes every time queued callbacks are invalidated.
func (c *BeatClock) Generation() uint64 {
	return c.gen
}

// Start begins musical time at zero.
func (c *BeatClock) Start(interval time.Duration) error {
	if c.state != Stopped {
		return fmt.Errorf("unable to start: %w", ErrRunning)
	}
	if interval <= 0 {
		return fmt.Errorf("unable to start with %v: %w", interval, ErrInterval)
	}
	c.interval = interval
	c.origin = c.now()
	c.banked = 0
	c.state = Running
	c.drop()
	return nil
}

// Pause freezes musical time and discards every queued callback. Whoever
// resumes the clock must schedule the remaining work again from Elapsed.
func (c *BeatClock) Pause() error {
	if c.state != Running {
		return fmt.Errorf("unable to pause a %v clock: %w", c.state, ErrNotRunning)
	}
	c.banked = c.ElapsedAt(c.now())
	c.state = Paused
	c.drop()
	return nil
}

func (c *BeatClock) Resume() error {
	if c.state != Paused {
		return fmt.Errorf("unable to resume a %v clock: %w", c.state, ErrNotPaused)
	}
	c.origin = c.now()
	c.state = Running
	return nil
}

// Cancel stops the clock and discards queued callbacks. Elapsed keeps
// reporting the time at which the clock stopped. It is safe to call at any
// time, any number of times.
func (c *BeatClock) Cancel() {
	if c.state == Running {
		c.banked = c.ElapsedAt(c.now())
	}
	c.state = Stopped
	c.drop()
}

func (c *BeatClock) Elapsed() time.Duration {
	return c.ElapsedAt(c.now())
}

// ElapsedAt is the musical time at wall time t. Instants before the last
// start or resume read as that start, so the result never goes backwards.
func (c *BeatClock) ElapsedAt(t time.Time) time.Duration {
	if c.state != Running {
		return c.banked
	}
	d := t.Sub(c.origin)
	if d < 0 {
		d = 0
	}
	return c.banked + d
}

// Beat is the slot musical time currently sits in.
func (c *BeatClock) Beat() int {
	if c.interval <= 0 {
		return -1
	}
	return int(c.Elapsed() / c.interval)
}

// ScheduleAt runs fn once the beat-th slot is reached.
func (c *BeatClock) ScheduleAt(beat int, fn func()) error {
	return c.ScheduleAfter(time.Duration(beat)*c.interval, fn)
}

// ScheduleAfter runs fn once musical time reaches at.
func (c *BeatClock) ScheduleAfter(at time.Duration, fn func()) error {
	if c.state == Stopped {
		return fmt.Errorf("unable to schedule: %w", ErrNotRunning)
	}
	ev := event{at: at, gen: c.gen, fn: fn}
	// Keep pending ordered by time, first scheduled first among equals
	i := sort.Search(len(c.pending), func(i int) bool { return c.pending[i].at > at })
	c.pending = append(c.pending, event{})
	copy(c.pending[i+1:], c.pending[i:])
	c.pending[i] = ev
	return nil
}

func (c *BeatClock) Pending() int {
	return len(c.pending)
}

// Poll fires every callback that is due and returns how many fired.
// A callback that pauses or cancels the clock stops the rest.
func (c *BeatClock) Poll() int {
	if c.state != Running {
		return 0
	}
	elapsed := c.Elapsed()
	fired := 0
	for c.state == Running && len(c.pending) > 0 && c.pending[0].at <= elapsed {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		if ev.gen != c.gen {
			continue
		}
		ev.fn()
		fired++
	}
	return fired
}

func (c *BeatClock) drop() {
	c.gen++
	c.pending = nil
}
