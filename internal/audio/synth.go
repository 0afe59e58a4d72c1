package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

type oscillator struct {
	freq     float64
	sweep    float64 // Hz added per second
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator returns a finite tone. sweep glides the frequency linearly.
func NewOscillator(freq, sweep float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		sweep:    sweep,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		}
		samples[i][0] = val
		samples[i][1] = val

		t := float64(o.position) / float64(o.rate)
		o.phase += (o.freq + o.sweep*t) / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay fades a stream linearly to silence over its length.
type decay struct {
	streamer beep.Streamer
	position int
	total    int
}

func newDecay(s beep.Streamer, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &decay{streamer: s, total: rate.N(duration)}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1 - float64(d.position)/float64(d.total)
		if vol < 0 {
			vol = 0
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// math.Log2(0) is -Inf, so zero volume is made silent instead.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Cue is a gameplay sound.
type Cue int

const (
	CueKill Cue = iota
	CuePickup
	CueHeal
	CueHurt
	CueLevelUp
	CueDeath
)

type tone struct {
	freq, sweep float64
	dur         time.Duration
	wave        WaveType
	gain        float64
}

var cueTones = map[Cue][]tone{
	CueKill:    {{freq: 220, sweep: -600, dur: 90 * time.Millisecond, wave: WaveSquare, gain: 0.4}},
	CuePickup:  {{freq: 1320, dur: 60 * time.Millisecond, wave: WaveSine, gain: 0.6}},
	CueHeal:    {{freq: 660, sweep: 1200, dur: 160 * time.Millisecond, wave: WaveSine, gain: 0.6}},
	CueHurt:    {{freq: 110, dur: 70 * time.Millisecond, wave: WaveSaw, gain: 0.5}},
	CueLevelUp: {{freq: 880, dur: 220 * time.Millisecond, wave: WaveSine, gain: 0.5}, {freq: 1320, dur: 220 * time.Millisecond, wave: WaveSine, gain: 0.3}},
	CueDeath:   {{freq: 330, sweep: -250, dur: 900 * time.Millisecond, wave: WaveSaw, gain: 0.6}},
}

// Synth builds the streamer for a cue.
func Synth(c Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	tones := cueTones[c]
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		osc := NewOscillator(t.freq, t.sweep, t.dur, t.wave, rate)
		parts = append(parts, newVolume(newDecay(osc, t.dur, rate), t.gain))
	}
	return newVolume(beep.Mix(parts...), volume)
}
