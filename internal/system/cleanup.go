package system

import (
	"time"

	"github.com/emberline/survivor/internal/core/event"
	coresys "github.com/emberline/survivor/internal/core/system"
)

// CleanupSystem delivers the frame's queued events at frame end.
// Phase 7 (Cleanup).
type CleanupSystem struct {
	bus *event.Bus
}

func NewCleanupSystem(bus *event.Bus) *CleanupSystem {
	return &CleanupSystem{bus: bus}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.bus.Flush()
}
