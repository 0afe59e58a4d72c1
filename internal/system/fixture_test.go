package system

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/emberline/survivor/internal/core/event"
	"github.com/emberline/survivor/internal/data"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/world"
	"go.uber.org/zap"
)

const frame = 16 * time.Millisecond

type fixture struct {
	rec     *render.Recorder
	content *data.Content
	world   *world.State
	bus     *event.Bus
	rng     *rand.Rand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	content := data.DefaultContent()
	rec := render.NewRecorder()
	return &fixture{
		rec:     rec,
		content: content,
		world: world.NewState(world.Capacities{
			Hostiles:    50,
			Experience:  120,
			Medkits:     30,
			Decorations: 160,
		}, content.PlayerDefaults(), rec, true, zap.NewNop()),
		bus: event.NewBus(),
		rng: rand.New(rand.NewSource(42)),
	}
}

func (f *fixture) streamer(keep int) *Streamer {
	return NewStreamer(f.world, f.content, StreamerOptions{
		SectorSize: 30,
		KeepRadius: keep,
		Attacher:   f.rec,
		Rand:       f.rng,
		Bus:        f.bus,
	})
}

func (f *fixture) combat() *Combat {
	return NewCombat(f.world, f.content, CombatOptions{
		SectorSize:    30,
		ContactRadius: 0.5,
		Bus:           f.bus,
	})
}

// manualTicker hands out channels the test fires by hand.
type manualTicker struct {
	mu      sync.Mutex
	chans   []chan time.Time
	stopped int
}

func (m *manualTicker) start(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := make(chan time.Time, 16)
	m.chans = append(m.chans, c)
	return c, func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

// fire delivers one tick to the most recent ticker without blocking.
func (m *manualTicker) fire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.chans) == 0 {
		return
	}
	select {
	case m.chans[len(m.chans)-1] <- time.Now():
	default:
	}
}

func (m *manualTicker) stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func waitPending(t *testing.T, s *Spawner, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("pending = %d, want %d", s.Pending(), n)
		}
		time.Sleep(time.Millisecond)
	}
}
