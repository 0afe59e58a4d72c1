package world

import "github.com/emberline/survivor/internal/vmath"

// Decoration is a static prop scattered over a sector.
type Decoration struct {
	Pos   vmath.Vec2
	Scale float64
}
