package event

import (
	"time"

	"github.com/emberline/survivor/internal/vmath"
)

type HostileSpawned struct {
	Pos   vmath.Vec2
	Level int
}

type HostileKilled struct {
	Pos vmath.Vec2
}

type PickupCollected struct {
	Kind  string
	Value float64
	Pos   vmath.Vec2
}

// PlayerDamaged aggregates one frame's contact damage.
type PlayerDamaged struct {
	Amount float64
	HP     float64
}

type PlayerLeveledUp struct {
	Level int
}

type PlayerDied struct {
	Survived time.Duration
	Kills    int
}

type SectorMaterialized struct {
	Coord vmath.SectorCoord
}

type SectorDisposed struct {
	Coord    vmath.SectorCoord
	Released int
}

type StateChanged struct {
	From string
	To   string
}
