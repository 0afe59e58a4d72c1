package ecs

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/vmath"
	"go.uber.org/zap"
)

var (
	// ErrExhausted is returned by Acquire when every slot is in use. It is
	// never fatal: the caller skips the spawn for this frame.
	ErrExhausted = errors.New("ecs: pool exhausted")

	// ErrInvariant marks programmer errors such as releasing a free slot.
	ErrInvariant = errors.New("ecs: invariant violation")
)

// PoolOptions configures a Pool.
type PoolOptions struct {
	Name     string
	Kind     render.Kind
	Capacity int
	Attacher render.Attacher
	Log      *zap.Logger
	// Strict panics on invariant violations instead of logging them.
	Strict bool
}

type slot[T any] struct {
	payload    T
	inUse      bool
	generation uint32
	visual     render.Handle
	sector     vmath.SectorCoord
	hasSector  bool
}

// Pool is a fixed-capacity slot arena with a free list. Slots are allocated
// once at construction and recycled; the pool never grows. Accessed only
// from the frame goroutine.
type Pool[T any] struct {
	name     string
	kind     render.Kind
	slots    []slot[T]
	freeList []uint32
	active   int
	attach   render.Attacher
	log      *zap.Logger
	strict   bool
}

func NewPool[T any](opts PoolOptions) *Pool[T] {
	if opts.Capacity < 0 {
		opts.Capacity = 0
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	p := &Pool[T]{
		name:     opts.Name,
		kind:     opts.Kind,
		slots:    make([]slot[T], opts.Capacity),
		freeList: make([]uint32, 0, opts.Capacity),
		attach:   opts.Attacher,
		log:      opts.Log,
		strict:   opts.Strict,
	}
	// Descending order: the lowest free index is always at the end.
	for i := opts.Capacity - 1; i >= 0; i-- {
		p.slots[i].generation = 1
		p.freeList = append(p.freeList, uint32(i))
	}
	return p
}

func (p *Pool[T]) Name() string      { return p.name }
func (p *Pool[T]) Kind() render.Kind { return p.kind }
func (p *Pool[T]) Cap() int          { return len(p.slots) }
func (p *Pool[T]) Active() int       { return p.active }

// Acquire claims the lowest-index free slot, stores payload, tags it with sector (nil for
// none) and requests a visual at pos. Returns ErrExhausted when no slot is
// free, or the attacher's error (render.ErrAssetNotReady) in which case the
// slot is left free.
func (p *Pool[T]) Acquire(sector *vmath.SectorCoord, pos vmath.Vec2, payload T) (SlotID, error) {
	if len(p.freeList) == 0 {
		return 0, ErrExhausted
	}
	idx := p.freeList[len(p.freeList)-1]

	var visual render.Handle
	if p.attach != nil {
		h, err := p.attach.Spawn(p.kind, pos)
		if err != nil {
			return 0, fmt.Errorf("%s: spawn visual: %w", p.name, err)
		}
		visual = h
	}

	p.freeList = p.freeList[:len(p.freeList)-1]
	s := &p.slots[idx]
	s.payload = payload
	s.inUse = true
	s.visual = visual
	s.hasSector = sector != nil
	if sector != nil {
		s.sector = *sector
	} else {
		s.sector = vmath.SectorCoord{}
	}
	p.active++
	return NewSlotID(idx, s.generation), nil
}

// Release returns a slot to the pool and removes its visual. Releasing a
// free slot or a stale handle does nothing (or panics in strict mode).
func (p *Pool[T]) Release(id SlotID) {
	s := p.lookup(id)
	if s == nil {
		p.violation("release of free or stale slot", id)
		return
	}
	p.free(id.Index(), s)
}

// Get returns the payload of a live slot.
func (p *Pool[T]) Get(id SlotID) (*T, bool) {
	s := p.lookup(id)
	if s == nil {
		return nil, false
	}
	return &s.payload, true
}

// Live reports whether id names a slot that is currently in use.
func (p *Pool[T]) Live(id SlotID) bool {
	return p.lookup(id) != nil
}

// Sector returns the sector tag of a live slot.
func (p *Pool[T]) Sector(id SlotID) (vmath.SectorCoord, bool) {
	s := p.lookup(id)
	if s == nil || !s.hasSector {
		return vmath.SectorCoord{}, false
	}
	return s.sector, true
}

// Visual returns the renderer handle of a live slot.
func (p *Pool[T]) Visual(id SlotID) render.Handle {
	if s := p.lookup(id); s != nil {
		return s.visual
	}
	return 0
}

// Move forwards a position update to the slot's visual.
func (p *Pool[T]) Move(id SlotID, pos vmath.Vec2, height float64) {
	s := p.lookup(id)
	if s == nil || s.visual == 0 || p.attach == nil {
		return
	}
	p.attach.Move(s.visual, pos, height)
}

// Tag forwards an appearance cue to the slot's visual.
func (p *Pool[T]) Tag(id SlotID, cue render.Cue) {
	s := p.lookup(id)
	if s == nil || s.visual == 0 || p.attach == nil {
		return
	}
	p.attach.Tag(s.visual, cue)
}

// Each calls fn for every slot in use, in index order. fn may release the
// slot it is given.
func (p *Pool[T]) Each(fn func(SlotID, *T)) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.inUse {
			continue
		}
		fn(NewSlotID(uint32(i), s.generation), &s.payload)
	}
}

// ReleaseSector releases every slot tagged with c. Returns the count.
func (p *Pool[T]) ReleaseSector(c vmath.SectorCoord) int {
	n := 0
	for i := range p.slots {
		s := &p.slots[i]
		if s.inUse && s.hasSector && s.sector == c {
			p.free(uint32(i), s)
			n++
		}
	}
	return n
}

// ReleaseAll releases every slot in use. Returns the count.
func (p *Pool[T]) ReleaseAll() int {
	n := 0
	for i := range p.slots {
		s := &p.slots[i]
		if s.inUse {
			p.free(uint32(i), s)
			n++
		}
	}
	return n
}

func (p *Pool[T]) lookup(id SlotID) *slot[T] {
	idx := id.Index()
	if int(idx) >= len(p.slots) {
		return nil
	}
	s := &p.slots[idx]
	if !s.inUse || s.generation != id.Generation() {
		return nil
	}
	return s
}

func (p *Pool[T]) free(idx uint32, s *slot[T]) {
	if s.visual != 0 && p.attach != nil {
		p.attach.Remove(s.visual)
	}
	var zero T
	s.payload = zero
	s.inUse = false
	s.visual = 0
	s.hasSector = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	// freeList is kept in descending order so Acquire pops the lowest index.
	at, _ := slices.BinarySearchFunc(p.freeList, idx, func(e, target uint32) int {
		return cmp.Compare(target, e)
	})
	p.freeList = slices.Insert(p.freeList, at, idx)
	p.active--
}

func (p *Pool[T]) violation(msg string, id SlotID) {
	if p.strict {
		panic(fmt.Errorf("%w: %s: %s (index=%d gen=%d)", ErrInvariant, p.name, msg, id.Index(), id.Generation()))
	}
	p.log.Debug("pool invariant violation",
		zap.String("pool", p.name),
		zap.String("reason", msg),
		zap.Uint32("index", id.Index()),
		zap.Uint32("generation", id.Generation()),
	)
}
