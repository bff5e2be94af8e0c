package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	SampleRate = beep.SampleRate(44100)
	bufferTime = 20 * time.Millisecond
)

// Speaker is the Device behind the system audio output. Samples, when set,
// replace the synthesized click and pattern hit.
type Speaker struct {
	ClickSample *beep.Buffer
	HitSample   *beep.Buffer

	mu    sync.Mutex
	ready bool
	held  bool
}

func (s *Speaker) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(bufferTime)); nil != err {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.ready = true
	return nil
}

func (s *Speaker) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Speaker) Acquire() (Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrUnavailable
	}
	if s.held {
		return nil, ErrBusy
	}
	s.held = true
	return &speakerVoice{device: s, channels: map[channel]*beep.Ctrl{}}, nil
}

func (s *Speaker) release() {
	s.mu.Lock()
	s.held = false
	s.mu.Unlock()
}

type speakerVoice struct {
	device   *Speaker
	mu       sync.Mutex
	released bool
	channels map[channel]*beep.Ctrl
}

func (v *speakerVoice) play(ch channel, s beep.Streamer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return
	}
	ctrl := &beep.Ctrl{Streamer: s}
	speaker.Lock()
	if old, ok := v.channels[ch]; ok {
		// A Ctrl without a streamer reports drained and leaves the mixer
		old.Streamer = nil
	}
	speaker.Unlock()
	v.channels[ch] = ctrl
	speaker.Play(ctrl)
}

func sampleOr(b *beep.Buffer, e envelope) beep.Streamer {
	if nil != b {
		return b.Streamer(0, b.Len())
	}
	return e.streamer(SampleRate)
}

func (v *speakerVoice) PlayClick(at time.Duration) {
	v.play(metronome, sampleOr(v.device.ClickSample, click))
}

func (v *speakerVoice) PlayPatternHit(at time.Duration) {
	v.play(drum, sampleOr(v.device.HitSample, thump))
}

func (v *speakerVoice) PlayTap() {
	v.play(tap, knock.streamer(SampleRate))
}

func (v *speakerVoice) PlayNotes(midi []int, harmonic bool) {
	v.play(tones, notes(SampleRate, midi, harmonic))
}

// Stop silences every channel but keeps the voice
func (v *speakerVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	speaker.Lock()
	for ch, ctrl := range v.channels {
		ctrl.Streamer = nil
		delete(v.channels, ch)
	}
	speaker.Unlock()
}

func (v *speakerVoice) Release() {
	v.Stop()
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return
	}
	v.released = true
	v.mu.Unlock()
	v.device.release()
}
