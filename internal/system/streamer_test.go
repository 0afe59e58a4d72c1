package system

import (
	"testing"

	"github.com/emberline/survivor/internal/core/ecs"
	"github.com/emberline/survivor/internal/data"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
)

func spawnedTotals(rec *render.Recorder) [3]int {
	return [3]int{
		rec.Spawned(render.KindExperience),
		rec.Spawned(render.KindMedkit),
		rec.Spawned(render.KindDecoration),
	}
}

func TestStreamerSyncIsStable(t *testing.T) {
	f := newFixture(t)
	s := f.streamer(0)

	s.Sync(vmath.Vec2{X: 3, Y: -4})
	if n := f.world.Sectors.Len(); n != 9 {
		t.Fatalf("materialized %d sectors, want 9", n)
	}
	want := spawnedTotals(f.rec)
	if want[2] != 9*6 {
		t.Fatalf("decorations = %d, want 54", want[2])
	}

	for i := 0; i < 5; i++ {
		s.Sync(vmath.Vec2{X: 3, Y: -4})
	}
	if n := f.world.Sectors.Len(); n != 9 {
		t.Fatalf("after resync: %d sectors, want 9", n)
	}
	if got := spawnedTotals(f.rec); got != want {
		t.Fatalf("resync generated content: %v, want %v", got, want)
	}
}

func TestStreamerTagsContentWithGeneratingSector(t *testing.T) {
	f := newFixture(t)
	s := f.streamer(0)
	s.Sync(vmath.Vec2{})

	for _, c := range f.world.Sectors.Coords() {
		sec := f.world.Sectors.Get(c)
		for _, ref := range sec.Content {
			if ref.Kind != render.KindDecoration {
				continue
			}
			got, ok := f.world.Decorations.Sector(ref.ID)
			if !ok || got != c {
				t.Fatalf("decoration tagged %v ok=%v, want %v", got, ok, c)
			}
			d, _ := f.world.Decorations.Get(ref.ID)
			if vmath.NearestSector(d.Pos, 30) != c {
				t.Fatalf("decoration at %+v lies outside sector %v", d.Pos, c)
			}
		}
	}
}

func TestStreamerCrossingBoundaryGeneratesOneColumn(t *testing.T) {
	f := newFixture(t)
	s := f.streamer(0)
	s.Sync(vmath.Vec2{})
	s.Sync(vmath.Vec2{X: 16})
	if n := f.world.Sectors.Len(); n != 12 {
		t.Fatalf("sectors = %d, want 12", n)
	}
	if s.Current() != (vmath.SectorCoord{X: 30}) {
		t.Fatalf("current = %v", s.Current())
	}
}

func TestStreamerDisposeSectorIdempotent(t *testing.T) {
	f := newFixture(t)
	s := f.streamer(0)
	s.Sync(vmath.Vec2{})

	origin := vmath.SectorCoord{}
	if s.DisposeSector(origin) < 6 {
		t.Fatal("expected at least the six decorations released")
	}
	if n := s.DisposeSector(origin); n != 0 {
		t.Fatalf("second dispose released %d", n)
	}
	if n := s.DisposeSector(vmath.SectorCoord{X: 900, Y: 900}); n != 0 {
		t.Fatalf("dispose of unknown sector released %d", n)
	}
	if f.world.Sectors.Has(origin) {
		t.Fatal("sector still materialized")
	}
	f.world.Decorations.Each(func(id ecs.SlotID, _ *world.Decoration) {
		if c, _ := f.world.Decorations.Sector(id); c == origin {
			t.Fatal("decoration of disposed sector still live")
		}
	})
}

func TestStreamerPrunesFarSectors(t *testing.T) {
	f := newFixture(t)
	s := f.streamer(2)
	s.Sync(vmath.Vec2{})
	s.Sync(vmath.Vec2{X: 90})

	// x=60,90,120 around the focus plus x=30 still within two sectors
	if n := f.world.Sectors.Len(); n != 12 {
		t.Fatalf("sectors = %d, want 12", n)
	}
	if f.world.Sectors.Has(vmath.SectorCoord{}) || f.world.Sectors.Has(vmath.SectorCoord{X: -30}) {
		t.Fatal("far sectors kept")
	}
	if live := f.rec.Live(render.KindDecoration); live != 12*6 {
		t.Fatalf("live decorations = %d, want 72", live)
	}
}

func TestStreamerQueuesContentUntilAssetReady(t *testing.T) {
	f := newFixture(t)
	f.content.Pickups = []data.PickupTemplate{
		{Kind: "experience", Value: 20, Radius: 2, PerSector: data.Range{Min: 1, Max: 1}},
		{Kind: "medkit", Value: 20, Radius: 1, PerSector: data.Range{Min: 2, Max: 2}},
	}
	f.rec.SetLoading(render.KindMedkit, true)
	s := f.streamer(0)

	s.Sync(vmath.Vec2{})
	if got := f.world.Medkits.Active(); got != 0 {
		t.Fatalf("medkits placed while loading: %d", got)
	}
	if got := s.Queued(render.KindMedkit); got != 18 {
		t.Fatalf("queued = %d, want 18", got)
	}
	if got := f.world.Experience.Active(); got != 9 {
		t.Fatalf("experience = %d, want 9 (other kinds unaffected)", got)
	}

	s.Sync(vmath.Vec2{})
	if got := s.Queued(render.KindMedkit); got != 18 {
		t.Fatalf("queue drained while still loading: %d", got)
	}

	f.rec.SetLoading(render.KindMedkit, false)
	s.Sync(vmath.Vec2{})
	if got := f.world.Medkits.Active(); got != 18 {
		t.Fatalf("medkits after ready = %d, want 18", got)
	}
	if got := s.Queued(render.KindMedkit); got != 0 {
		t.Fatalf("queue not empty: %d", got)
	}
	for _, c := range f.world.Sectors.Coords() {
		n := 0
		for _, ref := range f.world.Sectors.Get(c).Content {
			if ref.Kind == render.KindMedkit {
				n++
			}
		}
		if n != 2 {
			t.Fatalf("sector %v got %d medkits, want 2", c, n)
		}
	}
}

// refusingAttacher reports every kind ready but refuses spawns for the
// kinds in refuse, like a template that failed to load after all.
type refusingAttacher struct {
	*render.Recorder
	refuse map[render.Kind]bool
}

func (a *refusingAttacher) Ready(render.Kind) bool { return true }

func (a *refusingAttacher) Spawn(kind render.Kind, pos vmath.Vec2) (render.Handle, error) {
	if a.refuse[kind] {
		return 0, render.ErrAssetNotReady
	}
	return a.Recorder.Spawn(kind, pos)
}

func TestStreamerFlushContinuesPastRefusedKind(t *testing.T) {
	f := newFixture(t)
	f.content.Pickups = []data.PickupTemplate{
		{Kind: "experience", Value: 20, Radius: 2, PerSector: data.Range{Min: 1, Max: 1}},
		{Kind: "medkit", Value: 20, Radius: 1, PerSector: data.Range{Min: 1, Max: 1}},
	}
	att := &refusingAttacher{
		Recorder: f.rec,
		refuse:   map[render.Kind]bool{render.KindExperience: true, render.KindMedkit: true},
	}
	f.world = world.NewState(world.Capacities{
		Hostiles: 10, Experience: 20, Medkits: 20, Decorations: 100,
	}, f.content.PlayerDefaults(), att, true, nil)
	s := NewStreamer(f.world, f.content, StreamerOptions{
		SectorSize: 30,
		Attacher:   att,
		Rand:       f.rng,
	})

	s.Sync(vmath.Vec2{})
	if s.Queued(render.KindExperience) != 9 || s.Queued(render.KindMedkit) != 9 {
		t.Fatalf("queued = %d/%d, want 9/9", s.Queued(render.KindExperience), s.Queued(render.KindMedkit))
	}

	att.refuse[render.KindMedkit] = false
	s.Sync(vmath.Vec2{})

	if got := f.world.Medkits.Active(); got != 9 {
		t.Fatalf("medkits = %d, want 9 placed in the same frame", got)
	}
	if got := s.Queued(render.KindExperience); got != 9 {
		t.Fatalf("experience queue = %d, want 9", got)
	}
}
