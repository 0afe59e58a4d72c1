package system

import (
	"errors"
	"math/rand"
	"time"

	"github.com/emberline/survivor/internal/core/ecs"
	"github.com/emberline/survivor/internal/core/event"
	coresys "github.com/emberline/survivor/internal/core/system"
	"github.com/emberline/survivor/internal/data"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
	"go.uber.org/zap"
)

// streamedKinds is the generation order inside a sector.
var streamedKinds = [...]render.Kind{render.KindExperience, render.KindMedkit, render.KindDecoration}

// pendingGen is content a sector still owes because its visual template was
// not ready when the sector was generated.
type pendingGen struct {
	coord     vmath.SectorCoord
	remaining int
}

// StreamerOptions configures a Streamer.
type StreamerOptions struct {
	SectorSize float64
	KeepRadius int // in sectors, Chebyshev; 0 disables teardown
	Attacher   render.Attacher
	Rand       *rand.Rand
	Bus        *event.Bus
	Log        *zap.Logger
}

// Streamer keeps the 3x3 block of sectors around the focus materialized and
// fills new sectors with pickups and decorations. Accessed only from the
// frame goroutine. Phase 2 (Stream).
type Streamer struct {
	world   *world.State
	content *data.Content
	size    float64
	keep    int
	attach  render.Attacher
	rng     *rand.Rand
	bus     *event.Bus
	log     *zap.Logger

	queue   map[render.Kind][]pendingGen
	current vmath.SectorCoord
}

func NewStreamer(ws *world.State, content *data.Content, opts StreamerOptions) *Streamer {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	return &Streamer{
		world:   ws,
		content: content,
		size:    opts.SectorSize,
		keep:    opts.KeepRadius,
		attach:  opts.Attacher,
		rng:     opts.Rand,
		bus:     opts.Bus,
		log:     opts.Log,
		queue:   make(map[render.Kind][]pendingGen, len(streamedKinds)),
	}
}

func (s *Streamer) Phase() coresys.Phase { return coresys.PhaseStream }

func (s *Streamer) Update(_ time.Duration) {
	s.Sync(s.world.Player.Pos)
}

// Current returns the sector the focus was in at the last Sync.
func (s *Streamer) Current() vmath.SectorCoord { return s.current }

// Sync materializes the focus sector and its eight neighbours, replays any
// content queued while assets were loading, and tears down far sectors.
func (s *Streamer) Sync(focus vmath.Vec2) {
	s.flushQueued()

	cur := vmath.NearestSector(focus, s.size)
	s.current = cur
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			c := cur.Offset(dx, dy, s.size)
			if !s.world.Sectors.Has(c) {
				s.generate(c)
			}
		}
	}

	if s.keep > 0 {
		s.PruneFar(cur, s.keep)
	}
}

func (s *Streamer) generate(c vmath.SectorCoord) {
	sec := s.world.Sectors.Add(c)
	for _, kind := range streamedKinds {
		s.fill(sec, kind, s.draw(kind))
	}
	s.log.Debug("sector materialized",
		zap.Stringer("sector", c),
		zap.Int("content", len(sec.Content)),
	)
	if s.bus != nil {
		event.Emit(s.bus, event.SectorMaterialized{Coord: c})
	}
}

// draw returns how many items of kind a new sector receives.
func (s *Streamer) draw(kind render.Kind) int {
	switch kind {
	case render.KindExperience:
		if t, ok := s.content.Pickup(world.Experience); ok {
			return t.PerSector.Draw(s.rng)
		}
	case render.KindMedkit:
		if t, ok := s.content.Pickup(world.Medkit); ok {
			return t.PerSector.Draw(s.rng)
		}
	case render.KindDecoration:
		return s.content.Decorations.PerSector
	}
	return 0
}

// fill places n items of kind into sec. Content that cannot be placed yet
// because its asset is loading is queued behind anything already waiting
// for the same kind, so sectors are served in the order they were generated.
func (s *Streamer) fill(sec *world.Sector, kind render.Kind, n int) {
	if n <= 0 {
		return
	}
	if len(s.queue[kind]) > 0 {
		s.queue[kind] = append(s.queue[kind], pendingGen{coord: sec.Coord, remaining: n})
		return
	}
	for i := 0; i < n; i++ {
		err := s.place(sec, kind)
		if errors.Is(err, render.ErrAssetNotReady) {
			s.queue[kind] = append(s.queue[kind], pendingGen{coord: sec.Coord, remaining: n - i})
			s.log.Debug("asset not ready, queued sector content",
				zap.Stringer("kind", kind),
				zap.Stringer("sector", sec.Coord),
				zap.Int("remaining", n-i),
			)
			return
		}
		if err != nil {
			// pool exhausted: the rest of this sector's content is dropped
			s.log.Debug("sector content skipped", zap.Stringer("kind", kind), zap.Error(err))
			return
		}
	}
}

func (s *Streamer) flushQueued() {
	for _, kind := range streamedKinds {
		if len(s.queue[kind]) == 0 {
			continue
		}
		if s.attach != nil && !s.attach.Ready(kind) {
			continue
		}
		s.queue[kind] = s.flushKind(kind, s.queue[kind])
	}
}

// flushKind places queued content of one kind in FIFO order and returns
// what is still waiting. A refusal stops this kind only.
func (s *Streamer) flushKind(kind render.Kind, q []pendingGen) []pendingGen {
	for len(q) > 0 {
		p := &q[0]
		sec := s.world.Sectors.Get(p.coord)
		if sec == nil {
			q = q[1:] // sector torn down while waiting
			continue
		}
		for p.remaining > 0 {
			err := s.place(sec, kind)
			if errors.Is(err, render.ErrAssetNotReady) {
				return q
			}
			if err != nil {
				p.remaining = 0
				break
			}
			p.remaining--
		}
		q = q[1:]
	}
	return q[:0]
}

// Queued returns the number of items of kind still waiting for their asset.
func (s *Streamer) Queued(kind render.Kind) int {
	n := 0
	for _, p := range s.queue[kind] {
		n += p.remaining
	}
	return n
}

// place acquires one item of kind at a random point inside sec.
func (s *Streamer) place(sec *world.Sector, kind render.Kind) error {
	half := s.size / 2
	pos := sec.Coord.Center().Add(vmath.Vec2{
		X: (s.rng.Float64()*2 - 1) * half,
		Y: (s.rng.Float64()*2 - 1) * half,
	})
	coord := sec.Coord

	var (
		id  ecs.SlotID
		err error
	)
	switch kind {
	case render.KindExperience, render.KindMedkit:
		pk := world.Experience
		if kind == render.KindMedkit {
			pk = world.Medkit
		}
		t, _ := s.content.Pickup(pk)
		id, err = s.world.PickupPool(pk).Acquire(&coord, pos, world.Pickup{
			Pos:    pos,
			Kind:   pk,
			Value:  t.Value,
			Radius: t.Radius,
		})
	case render.KindDecoration:
		id, err = s.world.Decorations.Acquire(&coord, pos, world.Decoration{
			Pos:   pos,
			Scale: s.content.Decorations.Scale.Uniform(s.rng),
		})
	default:
		return nil
	}
	if err != nil {
		return err
	}
	sec.Content = append(sec.Content, world.ContentRef{Kind: kind, ID: id})
	return nil
}

// DisposeSector releases every slot tagged with c and forgets the sector.
// Disposing an unknown or already disposed sector is a no-op.
func (s *Streamer) DisposeSector(c vmath.SectorCoord) int {
	if s.world.Sectors.Remove(c) == nil {
		return 0
	}
	n := s.world.Content.ReleaseSector(c)
	s.log.Debug("sector disposed", zap.Stringer("sector", c), zap.Int("released", n))
	if s.bus != nil {
		event.Emit(s.bus, event.SectorDisposed{Coord: c, Released: n})
	}
	return n
}

// PruneFar disposes every sector more than radius sectors from center.
func (s *Streamer) PruneFar(center vmath.SectorCoord, radius int) int {
	n := 0
	for _, c := range s.world.Sectors.Coords() {
		if int(c.Chebyshev(center, s.size)) > radius {
			s.DisposeSector(c)
			n++
		}
	}
	return n
}

// DisposeAll tears down every materialized sector.
func (s *Streamer) DisposeAll() {
	for _, c := range s.world.Sectors.Coords() {
		s.DisposeSector(c)
	}
	s.Reset()
}

// Reset forgets all sectors and queued content without touching pools.
// Callers release pool slots themselves.
func (s *Streamer) Reset() {
	s.world.Sectors.Clear()
	clear(s.queue)
	s.current = vmath.SectorCoord{}
}
