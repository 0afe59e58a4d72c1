package system

import (
	"time"

	"github.com/emberline/survivor/internal/core/ecs"
	"github.com/emberline/survivor/internal/core/event"
	coresys "github.com/emberline/survivor/internal/core/system"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
	"go.uber.org/zap"
)

// Pickups collects experience and medkits within reach of the player.
// Phase 5 (Pickup).
type Pickups struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewPickups(ws *world.State, bus *event.Bus, log *zap.Logger) *Pickups {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pickups{world: ws, bus: bus, log: log}
}

func (s *Pickups) Phase() coresys.Phase { return coresys.PhasePickup }

func (s *Pickups) Update(_ time.Duration) {
	s.Resolve(s.world.Player.Pos)
}

// Resolve applies and releases every pickup in range of pos. Experience is
// always consumed. A medkit is left in place while the player is at full
// health. Pickups dropped this frame are skipped once.
func (s *Pickups) Resolve(pos vmath.Vec2) int {
	collected := s.resolvePool(s.world.Experience, pos)
	collected += s.resolvePool(s.world.Medkits, pos)
	return collected
}

func (s *Pickups) resolvePool(pool *ecs.Pool[world.Pickup], pos vmath.Vec2) int {
	p := s.world.Player
	n := 0
	pool.Each(func(id ecs.SlotID, pk *world.Pickup) {
		if pk.Collected {
			return
		}
		if pk.Fresh {
			pk.Fresh = false
			return
		}
		if pk.Pos.Dist(pos) >= pk.Radius {
			return
		}

		switch pk.Kind {
		case world.Experience:
			if gained := p.AddExperience(pk.Value); gained > 0 {
				s.log.Debug("hero level up", zap.Int("level", p.Level))
				if s.bus != nil {
					event.Emit(s.bus, event.PlayerLeveledUp{Level: p.Level})
				}
			}
		case world.Medkit:
			if p.HP >= p.MaxHP {
				return
			}
			p.Heal(pk.Value)
		}

		pk.Collected = true
		if s.bus != nil {
			event.Emit(s.bus, event.PickupCollected{Kind: pk.Kind.String(), Value: pk.Value, Pos: pk.Pos})
		}
		pool.Release(id)
		n++
	})
	return n
}
