package vmath

import (
	"fmt"
	"math"
)

// SectorCoord names a sector by the world position of its anchor. Both
// components are multiples of the sector size.
type SectorCoord struct {
	X int32
	Y int32
}

func (c SectorCoord) String() string { return fmt.Sprintf("%d,%d", c.X, c.Y) }

// Center returns the anchor as a world position.
func (c SectorCoord) Center() Vec2 { return Vec2{float64(c.X), float64(c.Y)} }

// Offset returns the coordinate dx, dy sectors away.
func (c SectorCoord) Offset(dx, dy int32, size float64) SectorCoord {
	s := int32(size)
	return SectorCoord{X: c.X + dx*s, Y: c.Y + dy*s}
}

// Chebyshev returns the distance between two coordinates in whole sectors.
func (c SectorCoord) Chebyshev(o SectorCoord, size float64) int32 {
	s := int32(size)
	dx := absInt32(c.X-o.X) / s
	dy := absInt32(c.Y-o.Y) / s
	if dx > dy {
		return dx
	}
	return dy
}

// NearestSector returns the sector whose anchor is closest to p. Sectors are
// centred on their anchor, so this is also the sector containing p. Used for
// streaming and for ownership tags of everything placed in the world.
func NearestSector(p Vec2, size float64) SectorCoord {
	return SectorCoord{
		X: int32(math.Round(p.X/size) * size),
		Y: int32(math.Round(p.Y/size) * size),
	}
}

// cornerSector returns the corner-anchored grid cell containing p: the
// anchor is the cell's minimum corner rather than its centre. It disagrees
// with NearestSector for points in the upper half of a sector, which is why
// nothing in the world is keyed by it. Kept for tests of that difference.
func cornerSector(p Vec2, size float64) SectorCoord {
	return SectorCoord{
		X: int32(math.Floor(p.X/size) * size),
		Y: int32(math.Floor(p.Y/size) * size),
	}
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
