package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/emberline/survivor/internal/config"
	"github.com/emberline/survivor/internal/core/event"
	coresys "github.com/emberline/survivor/internal/core/system"
	"github.com/emberline/survivor/internal/data"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/system"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
	"go.uber.org/zap"
)

// Listener receives the per-frame health and camera callbacks.
type Listener = system.Listener

var (
	ErrDisposed   = errors.New("session: disposed")
	ErrNotLoading = errors.New("session: already started")
)

// Options wires a Session to its collaborators. Only Config is required.
type Options struct {
	Config     *config.Config
	Content    *data.Content     // nil = data.DefaultContent()
	Attacher   render.Attacher   // nil = headless recorder
	Difficulty system.Difficulty // nil = flat
	Listener   Listener
	Ticker     system.TickerFunc // spawn trigger source; nil = real ticker
	Log        *zap.Logger
}

// Session owns one run of the game: world state, frame systems and the
// lifecycle state machine. Frame and the lifecycle methods are safe to call
// from any goroutine; they serialize on an internal mutex. Event handlers
// and listener callbacks run while that mutex is held and must not call
// back into the Session.
type Session struct {
	mu    sync.Mutex
	cfg   *config.Config
	log   *zap.Logger
	state State

	content  *data.Content
	attach   render.Attacher
	bus      *event.Bus
	world    *world.State
	defaults world.PlayerDefaults
	runner   *coresys.Runner

	clock    *system.Clock
	player   *system.PlayerSystem
	streamer *system.Streamer
	spawner  *system.Spawner
	combat   *system.Combat
	notifier *system.Notifier

	driverMu     sync.Mutex
	driverCancel context.CancelFunc
	driverDone   chan struct{}
	driverClosed bool // set by Dispose under driverMu

	disposeOnce sync.Once
}

func New(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New("session: nil config")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	cfg := opts.Config
	if opts.Content == nil {
		opts.Content = data.DefaultContent()
	}
	if opts.Attacher == nil {
		opts.Attacher = render.NewRecorder()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	seed := cfg.Session.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s := &Session{
		cfg:      cfg,
		log:      opts.Log,
		state:    Loading,
		content:  opts.Content,
		attach:   opts.Attacher,
		bus:      event.NewBus(),
		defaults: opts.Content.PlayerDefaults(),
		runner:   coresys.NewRunner(),
	}
	s.world = world.NewState(world.Capacities{
		Hostiles:    cfg.Pools.Hostiles,
		Experience:  cfg.Pools.Experience,
		Medkits:     cfg.Pools.Medkits,
		Decorations: cfg.Pools.Decorations,
	}, s.defaults, opts.Attacher, cfg.Session.Strict, opts.Log)

	s.clock = system.NewClock(cfg.Clock.LevelThresholds)
	s.player = system.NewPlayerSystem(s.world)
	s.streamer = system.NewStreamer(s.world, opts.Content, system.StreamerOptions{
		SectorSize: cfg.World.SectorSize,
		KeepRadius: cfg.World.KeepRadius,
		Attacher:   opts.Attacher,
		Rand:       rng,
		Bus:        s.bus,
		Log:        opts.Log,
	})
	s.spawner = system.NewSpawner(s.world, opts.Content, s.clock, system.SpawnerOptions{
		Interval:   cfg.Spawn.Interval,
		RingInner:  cfg.Spawn.RingInner,
		RingWidth:  cfg.Spawn.RingWidth,
		Difficulty: opts.Difficulty,
		Ticker:     opts.Ticker,
		Rand:       rng,
		Bus:        s.bus,
		Log:        opts.Log,
	})
	s.combat = system.NewCombat(s.world, opts.Content, system.CombatOptions{
		SectorSize:    cfg.World.SectorSize,
		ContactRadius: cfg.World.ContactRadius,
		Bus:           s.bus,
		Log:           opts.Log,
	})
	s.notifier = system.NewNotifier(s.world, opts.Listener)

	s.runner.Register(s.clock)
	s.runner.Register(s.player)
	s.runner.Register(s.streamer)
	s.runner.Register(s.spawner)
	s.runner.Register(s.combat)
	s.runner.Register(system.NewPickups(s.world, s.bus, opts.Log))
	s.runner.Register(s.notifier)
	s.runner.Register(system.NewCleanupSystem(s.bus))

	return s, nil
}

// Bus exposes the event bus for subscriptions. Handlers run on the frame
// goroutine during the cleanup phase.
func (s *Session) Bus() *event.Bus { return s.bus }

// Start leaves Loading: the origin sectors are generated and the spawn
// scheduler starts at its nominal rate.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Disposed:
		return ErrDisposed
	case Loading:
	default:
		return ErrNotLoading
	}
	s.streamer.Sync(s.world.Player.Pos)
	s.spawner.Start()
	s.setState(Running)
	return nil
}

// Frame advances the session by dt. While paused or dead only the output
// and cleanup phases run, so the state stays observable.
func (s *Session) Frame(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	if limit := s.cfg.Session.MaxFrameDelta; limit > 0 && dt > limit {
		dt = limit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Running:
		s.runner.Tick(dt)
		if s.world.Player.Dead() {
			s.enterDead()
			s.runner.TickOnly(0, coresys.PhaseCleanup)
		}
	case Paused, Dead:
		s.runner.TickOnly(dt, coresys.PhaseOutput, coresys.PhaseCleanup)
	}
}

func (s *Session) enterDead() {
	s.spawner.Stop()
	s.clock.Pause()
	s.log.Info("player died",
		zap.String("survived", s.clock.Format()),
		zap.Int("kills", s.world.Kills),
		zap.Int("level", s.world.Player.Level),
	)
	event.Emit(s.bus, event.PlayerDied{Survived: s.clock.Elapsed(), Kills: s.world.Kills})
	s.setState(Dead)
}

// TogglePause flips between Running and Paused and returns the new state.
// Pausing stops the spawn trigger and freezes the clock; resuming restores
// the nominal spawn rate. Other states are left alone.
func (s *Session) TogglePause() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Running:
		s.spawner.Stop()
		s.clock.Pause()
		s.setState(Paused)
	case Paused:
		s.clock.Resume()
		s.spawner.Start()
		s.setState(Running)
	}
	return s.state
}

// Restart returns the session to a fresh run: every pool slot released,
// clock cleared, player reset in place, spawn scheduler restarted and the
// origin sectors regenerated. Allowed from Running, Paused and Dead.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Disposed:
		return ErrDisposed
	case Loading:
		return errors.New("session: restart before start")
	}

	s.spawner.Stop()
	released := s.world.All.ReleaseAll()
	s.streamer.Reset()
	s.combat.Reset()
	s.player.Reset()
	s.clock.Clear()
	s.world.Player.Reset(s.defaults)
	s.world.Kills = 0
	s.bus.Reset()

	s.streamer.Sync(s.world.Player.Pos)
	s.spawner.Start()
	s.log.Info("session restarted", zap.Int("released", released))
	s.setState(Running)
	return nil
}

// Dispose stops the frame driver and the spawn trigger, releases every
// pool slot and detaches all listeners. Only the first call has effect.
// Must not be called from a listener or event handler.
func (s *Session) Dispose() {
	s.disposeOnce.Do(func() {
		s.stopDriver(true)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.spawner.Stop()
		released := s.world.All.ReleaseAll()
		s.streamer.Reset()
		s.notifier.SetListener(nil)
		s.setState(Disposed)
		s.bus.Reset()
		s.bus.Clear()
		s.log.Info("session disposed", zap.Int("released", released))
	})
}

// SetListener replaces the status listener; nil detaches it.
func (s *Session) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disposed {
		return
	}
	s.notifier.SetListener(l)
}

// SetInput feeds the decoded movement direction.
func (s *Session) SetInput(dir vmath.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.Player.Input = dir
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.log.Debug("session state", zap.Stringer("from", from), zap.Stringer("to", to))
	event.Emit(s.bus, event.StateChanged{From: from.String(), To: to.String()})
}
