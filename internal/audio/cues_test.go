package audio

import (
	"testing"
	"time"

	"github.com/emberline/survivor/internal/config"
	"github.com/emberline/survivor/internal/core/event"
	"github.com/gopxl/beep"
)

func TestSynthCuesAreFinite(t *testing.T) {
	rate := beep.SampleRate(8000)
	for c := CueKill; c <= CueDeath; c++ {
		s := Synth(c, rate, 0.5)
		buf := make([][2]float64, 512)
		total := 0
		for {
			n, ok := s.Stream(buf)
			total += n
			for i := 0; i < n; i++ {
				if buf[i][0] < -1 || buf[i][0] > 1 {
					t.Fatalf("cue %d sample %d out of range: %f", c, i, buf[i][0])
				}
			}
			if !ok {
				break
			}
			if total > rate.N(2*time.Second) {
				t.Fatalf("cue %d never ended", c)
			}
		}
		if total == 0 {
			t.Fatalf("cue %d produced no samples", c)
		}
	}
}

func TestOscillatorSquareValues(t *testing.T) {
	osc := NewOscillator(220, 0, 50*time.Millisecond, WaveSquare, beep.SampleRate(44100))
	samples := make([][2]float64, 50)
	n, ok := osc.Stream(samples)
	if !ok || n != 50 {
		t.Fatalf("n=%d ok=%v", n, ok)
	}
	for i := 0; i < n; i++ {
		if v := samples[i][0]; v != -1 && v != 1 {
			t.Fatalf("sample %d = %f", i, v)
		}
	}
}

func TestCuePlayerFollowsEvents(t *testing.T) {
	p := NewCuePlayer(config.AudioConfig{SampleRate: 8000, Volume: 0.3}, nil)
	now := time.Unix(0, 0)
	p.now = func() time.Time { return now }

	bus := event.NewBus()
	p.Attach(bus)

	event.Emit(bus, event.HostileKilled{})
	event.Emit(bus, event.PickupCollected{Kind: "experience"})
	bus.Flush()
	if got := p.Queued(); got != 2 {
		t.Fatalf("queued = %d, want 2", got)
	}

	for i := 0; i < 5; i++ {
		event.Emit(bus, event.PlayerDamaged{Amount: 1})
	}
	bus.Flush()
	if got := p.Queued(); got != 3 {
		t.Fatalf("queued = %d, want one hurt cue per window", got)
	}

	now = now.Add(hurtEvery)
	event.Emit(bus, event.PlayerDamaged{Amount: 1})
	bus.Flush()
	if got := p.Queued(); got != 4 {
		t.Fatalf("queued = %d, want 4", got)
	}
}
