package render

import (
	"errors"

	"github.com/emberline/survivor/internal/vmath"
)

// ErrAssetNotReady is returned by Spawn while the template for a kind is
// still loading. Callers queue the request and retry once Ready reports true.
var ErrAssetNotReady = errors.New("render: asset not ready")

// Kind selects the visual template for a spawned node.
type Kind uint8

const (
	KindHostile Kind = iota
	KindExperience
	KindMedkit
	KindDecoration
)

func (k Kind) String() string {
	switch k {
	case KindHostile:
		return "hostile"
	case KindExperience:
		return "experience"
	case KindMedkit:
		return "medkit"
	case KindDecoration:
		return "decoration"
	}
	return "unknown"
}

// Handle references a node owned by the renderer. Zero means no node.
type Handle uint64

// Cue is an appearance change requested by the simulation.
type Cue uint8

const (
	CueNormal Cue = iota
	CueDying
)

// Attacher is the visual attachment contract. The simulation never touches
// rendering primitives; it only asks for nodes to be created, moved, tagged
// and removed. All calls come from the frame goroutine.
type Attacher interface {
	Ready(kind Kind) bool
	Spawn(kind Kind, pos vmath.Vec2) (Handle, error)
	Move(h Handle, pos vmath.Vec2, height float64)
	Tag(h Handle, cue Cue)
	Remove(h Handle)
}
