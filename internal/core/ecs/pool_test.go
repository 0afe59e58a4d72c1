package ecs

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/vmath"
)

type crate struct {
	value int
}

func newTestPool(capacity int, rec *render.Recorder) *Pool[crate] {
	opts := PoolOptions{
		Name:     "crates",
		Kind:     render.KindMedkit,
		Capacity: capacity,
	}
	if rec != nil {
		opts.Attacher = rec
	}
	return NewPool[crate](opts)
}

func TestPoolCapacityInvariant(t *testing.T) {
	rec := render.NewRecorder()
	p := newTestPool(8, rec)
	rng := rand.New(rand.NewSource(7))

	var held []SlotID
	for step := 0; step < 2000; step++ {
		if rng.Intn(3) > 0 {
			id, err := p.Acquire(nil, vmath.Vec2{}, crate{value: step})
			if len(held) == p.Cap() {
				if !errors.Is(err, ErrExhausted) {
					t.Fatalf("step %d: acquire on full pool: err = %v, want ErrExhausted", step, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("step %d: acquire: %v", step, err)
			}
			held = append(held, id)
		} else if len(held) > 0 {
			i := rng.Intn(len(held))
			p.Release(held[i])
			held = append(held[:i], held[i+1:]...)
		}

		if p.Active() > p.Cap() {
			t.Fatalf("step %d: active %d exceeds capacity %d", step, p.Active(), p.Cap())
		}
		if p.Active() != len(held) {
			t.Fatalf("step %d: active = %d, want %d", step, p.Active(), len(held))
		}
		if rec.Live(render.KindMedkit) != len(held) {
			t.Fatalf("step %d: live visuals = %d, want %d", step, rec.Live(render.KindMedkit), len(held))
		}
	}
	if p.Cap() != 8 {
		t.Fatalf("capacity changed to %d", p.Cap())
	}
}

func TestPoolReleaseIsIdempotent(t *testing.T) {
	rec := render.NewRecorder()
	p := newTestPool(2, rec)

	id, err := p.Acquire(nil, vmath.Vec2{X: 1}, crate{value: 1})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	p.Release(id)
	p.Release(id)

	if p.Active() != 0 {
		t.Fatalf("active = %d, want 0", p.Active())
	}
	if got := rec.Removed(render.KindMedkit); got != 1 {
		t.Fatalf("visual removed %d times, want 1", got)
	}

	// The stale handle must not release the slot's next tenant.
	next, err := p.Acquire(nil, vmath.Vec2{}, crate{value: 2})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if next.Index() != id.Index() {
		t.Fatalf("expected slot reuse, got index %d want %d", next.Index(), id.Index())
	}
	p.Release(id)
	if !p.Live(next) {
		t.Fatal("stale release freed the new tenant")
	}
	if v, ok := p.Get(next); !ok || v.value != 2 {
		t.Fatalf("payload = %+v ok=%v, want value 2", v, ok)
	}
}

func TestPoolStrictPanicsOnDoubleRelease(t *testing.T) {
	p := NewPool[crate](PoolOptions{Name: "strict", Capacity: 1, Strict: true})
	id, err := p.Acquire(nil, vmath.Vec2{}, crate{})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	p.Release(id)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrInvariant) {
			t.Fatalf("panic value = %v, want ErrInvariant", r)
		}
	}()
	p.Release(id)
}

func TestPoolReusesLowestFreeIndex(t *testing.T) {
	p := newTestPool(5, nil)
	ids := make([]SlotID, 5)
	for i := range ids {
		id, err := p.Acquire(nil, vmath.Vec2{}, crate{value: i})
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		if id.Index() != uint32(i) {
			t.Fatalf("acquire %d got index %d", i, id.Index())
		}
		ids[i] = id
	}

	p.Release(ids[1])
	p.Release(ids[3])
	p.Release(ids[0])

	for _, want := range []uint32{0, 1, 3} {
		id, err := p.Acquire(nil, vmath.Vec2{}, crate{})
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		if id.Index() != want {
			t.Fatalf("reused index %d, want %d", id.Index(), want)
		}
	}
	if _, err := p.Acquire(nil, vmath.Vec2{}, crate{}); !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
}

func TestPoolAcquireAssetNotReadyLeavesSlotFree(t *testing.T) {
	rec := render.NewRecorder()
	rec.SetLoading(render.KindMedkit, true)
	p := newTestPool(1, rec)

	_, err := p.Acquire(nil, vmath.Vec2{}, crate{})
	if !errors.Is(err, render.ErrAssetNotReady) {
		t.Fatalf("err = %v, want ErrAssetNotReady", err)
	}
	if p.Active() != 0 {
		t.Fatalf("active = %d, want 0", p.Active())
	}

	rec.SetLoading(render.KindMedkit, false)
	if _, err := p.Acquire(nil, vmath.Vec2{}, crate{}); err != nil {
		t.Fatalf("acquire after ready: %v", err)
	}
}

func TestPoolReleaseSector(t *testing.T) {
	p := newTestPool(6, render.NewRecorder())
	a := vmath.SectorCoord{X: 0, Y: 0}
	b := vmath.SectorCoord{X: 30, Y: 0}

	for i := 0; i < 3; i++ {
		if _, err := p.Acquire(&a, vmath.Vec2{}, crate{}); err != nil {
			t.Fatal(err)
		}
	}
	keep, err := p.Acquire(&b, vmath.Vec2{}, crate{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Acquire(nil, vmath.Vec2{}, crate{}); err != nil {
		t.Fatal(err)
	}

	if n := p.ReleaseSector(a); n != 3 {
		t.Fatalf("released %d, want 3", n)
	}
	if n := p.ReleaseSector(a); n != 0 {
		t.Fatalf("second release of sector released %d, want 0", n)
	}
	if got, ok := p.Sector(keep); !ok || got != b {
		t.Fatalf("sector tag = %v ok=%v, want %v", got, ok, b)
	}
	if p.Active() != 2 {
		t.Fatalf("active = %d, want 2", p.Active())
	}
}

func TestPoolEachAllowsRelease(t *testing.T) {
	p := newTestPool(4, nil)
	for i := 0; i < 4; i++ {
		if _, err := p.Acquire(nil, vmath.Vec2{}, crate{value: i}); err != nil {
			t.Fatal(err)
		}
	}
	visited := 0
	p.Each(func(id SlotID, c *crate) {
		visited++
		if c.value%2 == 0 {
			p.Release(id)
		}
	})
	if visited != 4 {
		t.Fatalf("visited %d, want 4", visited)
	}
	if p.Active() != 2 {
		t.Fatalf("active = %d, want 2", p.Active())
	}
}

func TestRegistryReleaseAll(t *testing.T) {
	reg := NewRegistry()
	a := newTestPool(3, nil)
	b := NewPool[int](PoolOptions{Name: "ints", Capacity: 2})
	reg.Register(a)
	reg.Register(b)

	for i := 0; i < 3; i++ {
		a.Acquire(nil, vmath.Vec2{}, crate{})
	}
	b.Acquire(nil, vmath.Vec2{}, 1)

	if reg.Active() != 4 {
		t.Fatalf("active = %d, want 4", reg.Active())
	}
	if n := reg.ReleaseAll(); n != 4 {
		t.Fatalf("released %d, want 4", n)
	}
	if reg.Active() != 0 || a.Cap() != 3 || b.Cap() != 2 {
		t.Fatalf("after release: active=%d caps=%d,%d", reg.Active(), a.Cap(), b.Cap())
	}
}
