package system

import (
	"time"

	coresys "github.com/emberline/survivor/internal/core/system"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
)

// Listener receives the per-frame status callbacks. Calls come from the
// frame goroutine and must not block.
type Listener interface {
	// OnHealthChanged reports current hp every frame; hp <= 0 means dead.
	OnHealthChanged(hp float64)
	// OnPlayerMoved reports the player position for camera follow.
	OnPlayerMoved(pos vmath.Vec2, dt time.Duration)
}

// Notifier invokes the listener once per frame, health first.
// Phase 6 (Output).
type Notifier struct {
	world    *world.State
	listener Listener
}

func NewNotifier(ws *world.State, l Listener) *Notifier {
	return &Notifier{world: ws, listener: l}
}

func (s *Notifier) Phase() coresys.Phase { return coresys.PhaseOutput }

// SetListener replaces the listener; nil detaches it.
func (s *Notifier) SetListener(l Listener) {
	s.listener = l
}

func (s *Notifier) Update(dt time.Duration) {
	if s.listener == nil {
		return
	}
	p := s.world.Player
	s.listener.OnHealthChanged(p.HP)
	s.listener.OnPlayerMoved(p.Pos, dt)
}
