package world

// ZoneKind identifies an area-effect weapon. A player holds at most one zone
// per kind.
type ZoneKind uint8

const (
	PulseA ZoneKind = iota // fire ring
	PulseB                 // electric field
)

func (k ZoneKind) String() string {
	switch k {
	case PulseA:
		return "pulse_a"
	case PulseB:
		return "pulse_b"
	}
	return "unknown"
}

// ParseZoneKind maps a content-table name to a ZoneKind.
func ParseZoneKind(s string) (ZoneKind, bool) {
	switch s {
	case "pulse_a", "fire":
		return PulseA, true
	case "pulse_b", "electric":
		return PulseB, true
	}
	return 0, false
}

// WeaponZone is a persistent damage area anchored on the player.
type WeaponZone struct {
	Kind          ZoneKind
	Radius        float64 // rendered radius
	LethalScale   float64 // damage radius = Radius * LethalScale
	DamagePerTick float64 // applied once per frame to each hostile inside
	TimeScale     float64
	VisualTime    float64 // accumulated shader time, read by the renderer
}

// EffectiveRadius is the distance below which hostiles take damage.
func (z *WeaponZone) EffectiveRadius() float64 {
	return z.Radius * z.LethalScale
}
