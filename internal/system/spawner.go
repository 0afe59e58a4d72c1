package system

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/emberline/survivor/internal/core/event"
	coresys "github.com/emberline/survivor/internal/core/system"
	"github.com/emberline/survivor/internal/data"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/scripting"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
	"go.uber.org/zap"
)

// Difficulty tunes spawning by clock level. *scripting.Engine implements it.
type Difficulty interface {
	SpawnInterval(level int, base time.Duration) time.Duration
	HostileScale(level int) scripting.Scale
}

// FlatDifficulty keeps base values at every level.
type FlatDifficulty struct{}

func (FlatDifficulty) SpawnInterval(_ int, base time.Duration) time.Duration { return base }
func (FlatDifficulty) HostileScale(int) scripting.Scale                      { return scripting.Identity }

// TickerFunc starts a periodic trigger and returns its channel and a stop
// function. Tests substitute a manual ticker.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// RealTicker wraps time.NewTicker.
func RealTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// SpawnerOptions configures a Spawner.
type SpawnerOptions struct {
	Interval   time.Duration // nominal cadence at level 0
	RingInner  float64
	RingWidth  float64
	Difficulty Difficulty
	Ticker     TickerFunc
	Rand       *rand.Rand
	Bus        *event.Bus
	Log        *zap.Logger
}

// Spawner is the hostile spawn scheduler. A ticker goroutine only counts
// triggers; hostiles are acquired from the frame goroutine in the spawn
// phase, so pool state is never touched off-frame. Phase 3 (Spawn).
type Spawner struct {
	world      *world.State
	content    *data.Content
	clock      *Clock
	base       time.Duration
	ringInner  float64
	ringWidth  float64
	difficulty Difficulty
	newTicker  TickerFunc
	rng        *rand.Rand
	bus        *event.Bus
	log        *zap.Logger

	mu       sync.Mutex // guards fields below; shared with the ticker goroutine
	gen      uint64
	pending  int
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// frame goroutine only
	retry      int
	level      int
	scale      scripting.Scale
	scaleLevel int
}

func NewSpawner(ws *world.State, content *data.Content, clock *Clock, opts SpawnerOptions) *Spawner {
	if opts.Difficulty == nil {
		opts.Difficulty = FlatDifficulty{}
	}
	if opts.Ticker == nil {
		opts.Ticker = RealTicker
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Spawner{
		world:      ws,
		content:    content,
		clock:      clock,
		base:       opts.Interval,
		ringInner:  opts.RingInner,
		ringWidth:  opts.RingWidth,
		difficulty: opts.Difficulty,
		newTicker:  opts.Ticker,
		rng:        opts.Rand,
		bus:        opts.Bus,
		log:        opts.Log,
		scaleLevel: -1,
	}
}

func (s *Spawner) Phase() coresys.Phase { return coresys.PhaseSpawn }

// SetRate stops any running trigger, then starts a new one firing every
// interval. Zero stops spawning and discards triggers not yet drained.
func (s *Spawner) SetRate(interval time.Duration) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.pending = 0
	s.interval = 0
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	if interval <= 0 {
		s.retry = 0
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c, stop := s.newTicker(interval)

	s.mu.Lock()
	s.interval = interval
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c:
				s.mu.Lock()
				if s.gen == gen {
					s.pending++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Rate returns the current trigger interval; zero when stopped.
func (s *Spawner) Rate() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Pending returns triggers received but not yet drained.
func (s *Spawner) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Nominal is the interval for the clock's current level.
func (s *Spawner) Nominal() time.Duration {
	return s.difficulty.SpawnInterval(s.clock.Level(), s.base)
}

// Start sets the rate to the nominal interval.
func (s *Spawner) Start() {
	s.level = s.clock.Level()
	s.SetRate(s.Nominal())
}

// Stop sets the rate to zero.
func (s *Spawner) Stop() {
	s.SetRate(0)
}

// Update follows level changes and drains pending triggers.
func (s *Spawner) Update(_ time.Duration) {
	if lvl := s.clock.Level(); lvl != s.level {
		s.level = lvl
		if s.Rate() > 0 {
			// triggers already counted still spawn after the ticker is re-armed
			s.mu.Lock()
			carried := s.pending
			s.pending = 0
			s.mu.Unlock()
			s.SetRate(s.Nominal())
			s.retry += carried
			s.log.Info("difficulty level up",
				zap.Int("level", lvl),
				zap.Duration("spawn_interval", s.Rate()),
			)
		}
	}
	s.Drain()
}

// Drain spawns one hostile per pending trigger. Triggers that hit a loading
// asset are retried next frame; triggers that hit a full pool are dropped.
func (s *Spawner) Drain() int {
	s.mu.Lock()
	n := s.pending
	s.pending = 0
	s.mu.Unlock()

	n += s.retry
	s.retry = 0

	spawned := 0
	for i := 0; i < n; i++ {
		err := s.spawnOne()
		if errors.Is(err, render.ErrAssetNotReady) {
			s.retry = n - i
			break
		}
		if err != nil {
			s.log.Debug("hostile spawn skipped", zap.Error(err))
			continue
		}
		spawned++
	}
	return spawned
}

func (s *Spawner) spawnOne() error {
	level := s.clock.Level()
	if s.scaleLevel != level {
		s.scale = s.difficulty.HostileScale(level)
		s.scaleLevel = level
	}
	t := s.content.HostileFor(level, s.rng)

	angle := s.rng.Float64() * 2 * math.Pi
	dist := s.ringInner + s.rng.Float64()*s.ringWidth
	pos := s.world.Player.Pos.Add(vmath.Polar(angle, dist))

	hp := t.HP * s.scale.HP
	_, err := s.world.Hostiles.Acquire(nil, pos, world.Hostile{
		Template: t.Name,
		Pos:      pos,
		Speed:    t.Speed * s.scale.Speed,
		Damage:   t.Damage * s.scale.Damage,
		HP:       hp,
		MaxHP:    hp,
	})
	if err != nil {
		return err
	}
	if s.bus != nil {
		event.Emit(s.bus, event.HostileSpawned{Pos: pos, Level: level})
	}
	return nil
}
