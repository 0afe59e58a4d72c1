package world

import (
	"github.com/emberline/survivor/internal/core/ecs"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/vmath"
)

// ContentRef names one pool slot generated for a sector.
type ContentRef struct {
	Kind render.Kind
	ID   ecs.SlotID
}

// Sector is a materialized region of the world.
type Sector struct {
	Coord   vmath.SectorCoord
	Content []ContentRef
}

// SectorMap is the set of materialized sectors keyed by coordinate.
// Accessed only from the frame goroutine.
type SectorMap struct {
	sectors map[vmath.SectorCoord]*Sector
}

func NewSectorMap() *SectorMap {
	return &SectorMap{
		sectors: make(map[vmath.SectorCoord]*Sector, 16),
	}
}

func (m *SectorMap) Get(c vmath.SectorCoord) *Sector {
	return m.sectors[c]
}

func (m *SectorMap) Has(c vmath.SectorCoord) bool {
	_, ok := m.sectors[c]
	return ok
}

// Add returns the sector at c, creating it if needed.
func (m *SectorMap) Add(c vmath.SectorCoord) *Sector {
	s := m.sectors[c]
	if s == nil {
		s = &Sector{Coord: c}
		m.sectors[c] = s
	}
	return s
}

// Remove forgets c and returns the sector that was there, if any.
func (m *SectorMap) Remove(c vmath.SectorCoord) *Sector {
	s := m.sectors[c]
	delete(m.sectors, c)
	return s
}

func (m *SectorMap) Len() int { return len(m.sectors) }

// Coords returns every materialized coordinate. Order is unspecified.
func (m *SectorMap) Coords() []vmath.SectorCoord {
	out := make([]vmath.SectorCoord, 0, len(m.sectors))
	for c := range m.sectors {
		out = append(out, c)
	}
	return out
}

func (m *SectorMap) Clear() {
	clear(m.sectors)
}
