package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseClock   Phase = iota // 0: advance gameplay clock
	PhasePlayer               // 1: movement integration, heading
	PhaseStream               // 2: materialize sectors around the player
	PhaseSpawn                // 3: drain spawn triggers queued since last frame
	PhaseCombat               // 4: weapon zones, death transitions, contact damage
	PhasePickup               // 5: pickup collection
	PhaseOutput               // 6: health + camera notifications
	PhaseCleanup              // 7: dispatch queued events
)

func (p Phase) String() string {
	switch p {
	case PhaseClock:
		return "clock"
	case PhasePlayer:
		return "player"
	case PhaseStream:
		return "stream"
	case PhaseSpawn:
		return "spawn"
	case PhaseCombat:
		return "combat"
	case PhasePickup:
		return "pickup"
	case PhaseOutput:
		return "output"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
