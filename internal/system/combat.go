package system

import (
	"errors"
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

// sinkDepth is how far a dying hostile's visual sinks below ground.
const sinkDepth = 1.2

// CombatOptions configures a Combat resolver.
type CombatOptions struct {
	SectorSize    float64
	ContactRadius float64
	Bus           *event.Bus
	Log           *zap.Logger
}

// Combat applies weapon zone damage, drives the hostile death transition
// and applies contact damage to the player. Phase 4 (Combat).
//
// Death flow: hp < 0 → Dying (drop experience, dying cue) → sink for
// DeathAnimationDuration → PendingRemoval → slot released in the same call.
type Combat struct {
	world   *world.State
	content *data.Content
	size    float64
	contact float64
	bus     *event.Bus
	log     *zap.Logger

	now   time.Duration // sum of resolved deltas; death timers run on it
	drops []vmath.Vec2  // experience drops waiting for their asset
}

func NewCombat(ws *world.State, content *data.Content, opts CombatOptions) *Combat {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Combat{
		world:   ws,
		content: content,
		size:    opts.SectorSize,
		contact: opts.ContactRadius,
		bus:     opts.Bus,
		log:     opts.Log,
	}
}

func (s *Combat) Phase() coresys.Phase { return coresys.PhaseCombat }

func (s *Combat) Update(dt time.Duration) {
	s.Resolve(dt)
}

// Now returns the combat clock.
func (s *Combat) Now() time.Duration { return s.now }

// Resolve runs one frame of combat.
func (s *Combat) Resolve(dt time.Duration) {
	s.now += dt
	p := s.world.Player
	sec := dt.Seconds()

	for i := range p.Weapons {
		p.Weapons[i].VisualTime += sec * p.Weapons[i].TimeScale
	}

	s.retryDrops()

	var contact float64
	pool := s.world.Hostiles
	pool.Each(func(id ecs.SlotID, h *world.Hostile) {
		switch h.Death.State {
		case world.Alive:
			s.chase(id, h, sec)
			for i := range p.Weapons {
				if h.Pos.Dist(p.Pos) < p.Weapons[i].EffectiveRadius() {
					h.HP -= p.Weapons[i].DamagePerTick
				}
			}
			if h.HP < 0 {
				s.kill(id, h)
				return
			}
			if h.Pos.Dist(p.Pos) < s.contact {
				contact += h.Damage
			}
		case world.Dying:
			progress := h.Death.Progress(s.now)
			if progress >= 1 {
				h.Death.State = world.PendingRemoval
			} else {
				pool.Move(id, h.Pos, -progress*sinkDepth)
			}
		}
		if h.Death.State == world.PendingRemoval {
			pool.Release(id)
		}
	})

	if contact > 0 {
		p.Damage(contact)
		if s.bus != nil {
			event.Emit(s.bus, event.PlayerDamaged{Amount: contact, HP: p.HP})
		}
	}
}

// chase moves a hostile toward the player, stopping just inside contact
// range so hostiles crowd the player instead of stacking on it.
func (s *Combat) chase(id ecs.SlotID, h *world.Hostile, sec float64) {
	if h.Speed <= 0 {
		return
	}
	to := s.world.Player.Pos.Sub(h.Pos)
	d := to.Len()
	stop := s.contact * 0.8
	if d <= stop {
		return
	}
	step := min(h.Speed*sec, d-stop)
	h.Pos = h.Pos.Add(to.Scale(step / d))
	s.world.Hostiles.Move(id, h.Pos, 0)
}

func (s *Combat) kill(id ecs.SlotID, h *world.Hostile) {
	h.Death = world.DeathPhase{
		State:    world.Dying,
		Start:    s.now,
		Duration: world.DeathAnimationDuration,
	}
	s.world.Hostiles.Tag(id, render.CueDying)
	s.world.Kills++
	s.drop(h.Pos)
	if s.bus != nil {
		event.Emit(s.bus, event.HostileKilled{Pos: h.Pos})
	}
}

// drop places one experience pickup at pos, tagged with the sector that
// contains it. It is marked fresh so it cannot be collected this frame.
func (s *Combat) drop(pos vmath.Vec2) {
	err := s.spawnDrop(pos)
	if errors.Is(err, render.ErrAssetNotReady) {
		s.drops = append(s.drops, pos)
		return
	}
	if err != nil {
		s.log.Debug("experience drop lost", zap.Error(err))
	}
}

func (s *Combat) spawnDrop(pos vmath.Vec2) error {
	t, _ := s.content.Pickup(world.Experience)
	c := vmath.NearestSector(pos, s.size)
	id, err := s.world.Experience.Acquire(&c, pos, world.Pickup{
		Pos:    pos,
		Kind:   world.Experience,
		Value:  t.Value,
		Radius: t.Radius,
		Fresh:  true,
	})
	if err != nil {
		return err
	}
	if sec := s.world.Sectors.Get(c); sec != nil {
		sec.Content = append(sec.Content, world.ContentRef{Kind: render.KindExperience, ID: id})
	}
	return nil
}

func (s *Combat) retryDrops() {
	for len(s.drops) > 0 {
		err := s.spawnDrop(s.drops[0])
		if errors.Is(err, render.ErrAssetNotReady) {
			return
		}
		if err != nil {
			s.log.Debug("experience drop lost", zap.Error(err))
		}
		s.drops = s.drops[1:]
	}
}

// Reset clears the combat clock and queued drops.
func (s *Combat) Reset() {
	s.now = 0
	s.drops = nil
}
