package world

import (
	"time"

	"github.com/emberline/survivor/internal/vmath"
)

// DeathAnimationDuration is how long a dying hostile sinks before its slot
// is returned to the pool.
const DeathAnimationDuration = 200 * time.Millisecond

type DeathState uint8

const (
	Alive DeathState = iota
	Dying
	PendingRemoval
)

func (s DeathState) String() string {
	switch s {
	case Alive:
		return "alive"
	case Dying:
		return "dying"
	case PendingRemoval:
		return "pending_removal"
	}
	return "unknown"
}

// DeathPhase tracks a hostile between lethal damage and release.
type DeathPhase struct {
	State    DeathState
	Start    time.Duration // combat time at which Dying began
	Duration time.Duration
}

// Progress returns how far through the death animation the hostile is at
// combat time now, in [0, 1].
func (d DeathPhase) Progress(now time.Duration) float64 {
	if d.State == Alive {
		return 0
	}
	if d.State == PendingRemoval || d.Duration <= 0 {
		return 1
	}
	p := float64(now-d.Start) / float64(d.Duration)
	return vmath.Clamp(p, 0, 1)
}

// Hostile is the payload of a hostile pool slot.
type Hostile struct {
	Template string
	Pos      vmath.Vec2
	Speed    float64 // units per second
	Damage   float64 // contact damage per frame
	HP       float64
	MaxHP    float64
	Death    DeathPhase
}

// Alive reports whether the hostile can still take and deal damage.
func (h *Hostile) Alive() bool { return h.Death.State == Alive }
