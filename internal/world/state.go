package world

import (
	"github.com/emberline/survivor/internal/core/ecs"
	"github.com/emberline/survivor/internal/render"
	"go.uber.org/zap"
)

// Capacities sizes the session's pools.
type Capacities struct {
	Hostiles    int
	Experience  int
	Medkits     int
	Decorations int
}

// State is the session-owned world: the player, every pool and the
// materialized sectors. There is no package-level registry; collaborators
// receive the State they operate on. Accessed only from the frame goroutine.
type State struct {
	Player      *Player
	Hostiles    *ecs.Pool[Hostile]
	Experience  *ecs.Pool[Pickup]
	Medkits     *ecs.Pool[Pickup]
	Decorations *ecs.Pool[Decoration]
	Sectors     *SectorMap

	// Content holds the sector-streamed pools; All adds the hostile pool.
	Content *ecs.Registry
	All     *ecs.Registry

	Kills int
}

func NewState(caps Capacities, player PlayerDefaults, attach render.Attacher, strict bool, log *zap.Logger) *State {
	opts := func(name string, kind render.Kind, capacity int) ecs.PoolOptions {
		return ecs.PoolOptions{
			Name:     name,
			Kind:     kind,
			Capacity: capacity,
			Attacher: attach,
			Log:      log,
			Strict:   strict,
		}
	}
	s := &State{
		Player:      NewPlayer(player),
		Hostiles:    ecs.NewPool[Hostile](opts("hostiles", render.KindHostile, caps.Hostiles)),
		Experience:  ecs.NewPool[Pickup](opts("experience", render.KindExperience, caps.Experience)),
		Medkits:     ecs.NewPool[Pickup](opts("medkits", render.KindMedkit, caps.Medkits)),
		Decorations: ecs.NewPool[Decoration](opts("decorations", render.KindDecoration, caps.Decorations)),
		Sectors:     NewSectorMap(),
		Content:     ecs.NewRegistry(),
		All:         ecs.NewRegistry(),
	}
	s.Content.Register(s.Experience)
	s.Content.Register(s.Medkits)
	s.Content.Register(s.Decorations)
	s.All.Register(s.Hostiles)
	s.All.Register(s.Experience)
	s.All.Register(s.Medkits)
	s.All.Register(s.Decorations)
	return s
}

// PickupPool returns the pool that stores pickups of kind k.
func (s *State) PickupPool(k PickupKind) *ecs.Pool[Pickup] {
	if k == Medkit {
		return s.Medkits
	}
	return s.Experience
}

// AliveHostiles counts hostiles that have not started dying.
func (s *State) AliveHostiles() int {
	n := 0
	s.Hostiles.Each(func(_ ecs.SlotID, h *Hostile) {
		if h.Alive() {
			n++
		}
	})
	return n
}
