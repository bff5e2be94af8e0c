package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

// Frequency of a MIDI note, equal temperament around A4
func Frequency(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

const (
	noteC2 = 36
	noteC3 = 48
	noteC5 = 72
)

// envelope is a sine voice with an exponential decay. sweep bends the pitch
// down from (1+sweep) times freq, which is what makes a drum thump.
type envelope struct {
	freq    float64
	sweep   float64
	bend    float64 // Seconds for the sweep to fall by 1/e
	decay   float64 // Seconds for the amplitude to fall by 1/e
	gain    float64
	seconds time.Duration
}

var (
	click  = envelope{freq: Frequency(noteC5), decay: 0.02, gain: 0.4, seconds: 50 * time.Millisecond}
	thump  = envelope{freq: Frequency(noteC2), sweep: 15, bend: 0.05, decay: 0.1, gain: 0.8, seconds: 400 * time.Millisecond}
	knock  = envelope{freq: Frequency(noteC3), sweep: 4, bend: 0.03, decay: 0.05, gain: 0.5, seconds: 100 * time.Millisecond}
	pluck  = envelope{decay: 0.4, gain: 0.3, seconds: 800 * time.Millisecond}
	melody = 500 * time.Millisecond
)

func (e envelope) streamer(sr beep.SampleRate) beep.Streamer {
	n := sr.N(e.seconds)
	i := 0
	phase := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		for k := range samples {
			if i >= n {
				return k, true
			}
			t := float64(i) / float64(sr)
			f := e.freq
			if e.sweep > 0 {
				f *= 1 + e.sweep*math.Exp(-t/e.bend)
			}
			phase += 2 * math.Pi * f / float64(sr)
			v := e.gain * math.Sin(phase) * math.Exp(-t/e.decay)
			samples[k][0], samples[k][1] = v, v
			i++
		}
		return len(samples), true
	})
}

// chord sounds every frequency of freqs at once under one envelope
func (e envelope) chord(sr beep.SampleRate, freqs []float64) beep.Streamer {
	n := sr.N(e.seconds)
	i := 0
	phases := make([]float64, len(freqs))
	gain := e.gain / math.Max(1, float64(len(freqs)))
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		for k := range samples {
			if i >= n {
				return k, true
			}
			t := float64(i) / float64(sr)
			v := 0.0
			for j, f := range freqs {
				phases[j] += 2 * math.Pi * f / float64(sr)
				v += math.Sin(phases[j])
			}
			v *= gain * math.Exp(-t/e.decay)
			samples[k][0], samples[k][1] = v, v
			i++
		}
		return len(samples), true
	})
}

// notes plays midi notes together or one after another
func notes(sr beep.SampleRate, midi []int, harmonic bool) beep.Streamer {
	if harmonic {
		freqs := make([]float64, len(midi))
		for i, m := range midi {
			freqs[i] = Frequency(m)
		}
		return pluck.chord(sr, freqs)
	}
	voices := make([]beep.Streamer, 0, len(midi))
	for _, m := range midi {
		e := pluck
		e.freq = Frequency(m)
		e.seconds = melody
		voices = append(voices, e.streamer(sr))
	}
	return beep.Seq(voices...)
}
