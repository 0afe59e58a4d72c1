package audio

import (
	"sync"
	"time"

	"github.com/emberline/survivor/internal/config"
	"github.com/emberline/survivor/internal/core/event"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// hurtEvery limits the contact-damage cue, which would otherwise fire every
// frame while a hostile is touching the player.
const hurtEvery = 250 * time.Millisecond

// CuePlayer turns gameplay events into short synthesized sounds.
type CuePlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	volume      float64
	initialized bool
	lastHurt    time.Time
	now         func() time.Time
	log         *zap.Logger
}

func NewCuePlayer(cfg config.AudioConfig, log *zap.Logger) *CuePlayer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CuePlayer{
		mixer:  &beep.Mixer{},
		rate:   beep.SampleRate(cfg.SampleRate),
		volume: cfg.Volume,
		now:    time.Now,
		log:    log,
	}
}

// Initialize opens the audio device and starts the mixer.
func (p *CuePlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Attach subscribes the player to the session's events.
func (p *CuePlayer) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(event.HostileKilled) { p.Play(CueKill) })
	event.Subscribe(bus, func(e event.PickupCollected) {
		if e.Kind == "medkit" {
			p.Play(CueHeal)
			return
		}
		p.Play(CuePickup)
	})
	event.Subscribe(bus, func(event.PlayerDamaged) {
		now := p.now()
		p.mu.Lock()
		if now.Sub(p.lastHurt) < hurtEvery {
			p.mu.Unlock()
			return
		}
		p.lastHurt = now
		p.mu.Unlock()
		p.Play(CueHurt)
	})
	event.Subscribe(bus, func(event.PlayerLeveledUp) { p.Play(CueLevelUp) })
	event.Subscribe(bus, func(event.PlayerDied) { p.Play(CueDeath) })
}

// Play queues a cue on the mixer.
func (p *CuePlayer) Play(c Cue) {
	s := Synth(c, p.rate, p.volume)
	p.mu.Lock()
	live := p.initialized
	p.mu.Unlock()
	if live {
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
		return
	}
	p.mixer.Add(s)
}

// Queued returns the number of cues still playing.
func (p *CuePlayer) Queued() int {
	p.mu.Lock()
	live := p.initialized
	p.mu.Unlock()
	if live {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return p.mixer.Len()
}

// Close stops playback and releases the device.
func (p *CuePlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}
