package audio

import (
	"sync"
	"time"
)

// Event is a sound a Silent voice was asked to make.
type Event struct {
	Kind  string // click, hit, tap, notes or stop
	At    time.Duration
	Notes []int
}

// Silent is a Device that plays nothing and remembers what it was asked to
// play. Fail, when set, is returned by Resume.
type Silent struct {
	Fail error

	mu       sync.Mutex
	ready    bool
	held     bool
	events   []Event
	acquired int
	released int
}

func (s *Silent) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nil != s.Fail {
		return s.Fail
	}
	s.ready = true
	return nil
}

func (s *Silent) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Silent) Acquire() (Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrUnavailable
	}
	if s.held {
		return nil, ErrBusy
	}
	s.held = true
	s.acquired++
	return &silentVoice{device: s}, nil
}

// Held reports whether a voice is currently out
func (s *Silent) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

func (s *Silent) Acquired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired
}

func (s *Silent) Released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *Silent) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

// Count returns how many events of kind were recorded
func (s *Silent) Count(kind string) int {
	n := 0
	for _, e := range s.Events() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (s *Silent) Reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}

func (s *Silent) record(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

type silentVoice struct {
	device   *Silent
	released bool
}

func (v *silentVoice) emit(e Event) {
	if v.released {
		return
	}
	v.device.record(e)
}

func (v *silentVoice) PlayClick(at time.Duration)      { v.emit(Event{Kind: "click", At: at}) }
func (v *silentVoice) PlayPatternHit(at time.Duration) { v.emit(Event{Kind: "hit", At: at}) }
func (v *silentVoice) PlayTap()                        { v.emit(Event{Kind: "tap"}) }
func (v *silentVoice) Stop()                           { v.emit(Event{Kind: "stop"}) }

func (v *silentVoice) PlayNotes(notes []int, harmonic bool) {
	n := make([]int, len(notes))
	copy(n, notes)
	v.emit(Event{Kind: "notes", Notes: n})
}

func (v *silentVoice) Release() {
	if v.released {
		return
	}
	v.released = true
	v.device.mu.Lock()
	v.device.held = false
	v.device.released++
	v.device.mu.Unlock()
}
