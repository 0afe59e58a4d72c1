package world

import "github.com/emberline/survivor/internal/vmath"

type PickupKind uint8

const (
	Experience PickupKind = iota
	Medkit
)

func (k PickupKind) String() string {
	switch k {
	case Experience:
		return "experience"
	case Medkit:
		return "medkit"
	}
	return "unknown"
}

// Pickup is the payload of an experience or medkit slot. The owning sector
// lives on the slot tag, not here.
type Pickup struct {
	Pos       vmath.Vec2
	Kind      PickupKind
	Value     float64
	Radius    float64
	Collected bool
	Fresh     bool // dropped this frame; not collectable until the next
}
