package session

import (
	"time"

	"github.com/emberline/survivor/internal/core/ecs"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
)

// Snapshot is a read-only copy of the session for HUDs and spectators.
type Snapshot struct {
	State     string        `json:"state"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Clock     string        `json:"clock"`
	Level     int           `json:"level"`
	HP        float64       `json:"hp"`
	MaxHP     float64       `json:"max_hp"`
	XP        float64       `json:"xp"`
	NextXP    float64       `json:"next_xp"`
	HeroLevel int           `json:"hero_level"`
	Player    vmath.Vec2    `json:"player"`
	Heading   float64       `json:"heading"`
	Kills     int           `json:"kills"`
	Hostiles  []vmath.Vec2  `json:"hostiles"`
	Pickups   []PickupView  `json:"pickups"`
	Sectors   int           `json:"sectors"`
	Zones     []ZoneView    `json:"zones"`
}

type PickupView struct {
	Kind string     `json:"kind"`
	Pos  vmath.Vec2 `json:"pos"`
}

type ZoneView struct {
	Kind       string  `json:"kind"`
	Radius     float64 `json:"radius"`
	VisualTime float64 `json:"visual_time"`
}

// Snapshot copies the current state. Hostiles in their death animation are
// omitted.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.world.Player
	snap := Snapshot{
		State:     s.state.String(),
		Elapsed:   s.clock.Elapsed(),
		Clock:     s.clock.Format(),
		Level:     s.clock.Level(),
		HP:        p.HP,
		MaxHP:     p.MaxHP,
		XP:        p.Experience,
		NextXP:    p.NextLevelXP(),
		HeroLevel: p.Level,
		Player:    p.Pos,
		Heading:   p.Heading,
		Kills:     s.world.Kills,
		Hostiles:  make([]vmath.Vec2, 0, s.world.Hostiles.Active()),
		Pickups:   make([]PickupView, 0, s.world.Experience.Active()+s.world.Medkits.Active()),
		Sectors:   s.world.Sectors.Len(),
	}
	s.world.Hostiles.Each(func(_ ecs.SlotID, h *world.Hostile) {
		if h.Alive() {
			snap.Hostiles = append(snap.Hostiles, h.Pos)
		}
	})
	collect := func(_ ecs.SlotID, pk *world.Pickup) {
		snap.Pickups = append(snap.Pickups, PickupView{Kind: pk.Kind.String(), Pos: pk.Pos})
	}
	s.world.Experience.Each(collect)
	s.world.Medkits.Each(collect)
	for _, z := range p.Weapons {
		snap.Zones = append(snap.Zones, ZoneView{Kind: z.Kind.String(), Radius: z.Radius, VisualTime: z.VisualTime})
	}
	return snap
}

// Counts reports live slots per pool: hostiles, experience, medkits,
// decorations.
func (s *Session) Counts() (hostiles, experience, medkits, decorations int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Hostiles.Active(), s.world.Experience.Active(), s.world.Medkits.Active(), s.world.Decorations.Active()
}
