package system

import (
	"slices"
	"sort"
	"time"
)

// Runner executes systems in phase order each frame. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickOnly runs the systems whose phase is listed, in phase order. The
// session uses it to keep notifications flowing while the simulation is
// frozen.
func (r *Runner) TickOnly(dt time.Duration, phases ...Phase) {
	r.ensureSorted()
	for _, s := range r.systems {
		if slices.Contains(phases, s.Phase()) {
			s.Update(dt)
		}
	}
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
