package ecs

import "github.com/emberline/survivor/internal/vmath"

// Releaser is implemented by every Pool so the Registry can bulk-release
// slots on sector teardown, restart and dispose.
type Releaser interface {
	Name() string
	Active() int
	ReleaseSector(c vmath.SectorCoord) int
	ReleaseAll() int
}

// Registry tracks a set of pools.
type Registry struct {
	pools []Releaser
}

func NewRegistry() *Registry {
	return &Registry{
		pools: make([]Releaser, 0, 8),
	}
}

// Register adds a pool to the registry.
func (r *Registry) Register(p Releaser) {
	r.pools = append(r.pools, p)
}

// ReleaseSector releases every slot tagged with c in every registered pool.
func (r *Registry) ReleaseSector(c vmath.SectorCoord) int {
	n := 0
	for _, p := range r.pools {
		n += p.ReleaseSector(c)
	}
	return n
}

// ReleaseAll empties every registered pool.
func (r *Registry) ReleaseAll() int {
	n := 0
	for _, p := range r.pools {
		n += p.ReleaseAll()
	}
	return n
}

// Active returns the total number of slots in use across all pools.
func (r *Registry) Active() int {
	n := 0
	for _, p := range r.pools {
		n += p.Active()
	}
	return n
}
