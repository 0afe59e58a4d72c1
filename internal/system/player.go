package system

import (
	"math"
	"time"

	coresys "github.com/emberline/survivor/internal/core/system"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
)

const (
	rampUpPerSec   = 2.4 // 0 to full speed in ~0.4s
	rampDownPerSec = 4.8
	headingLambda  = 12
)

// PlayerSystem integrates the hero's movement from the direction input.
// The ramp eases speed in and out; while easing out the hero keeps drifting
// along the last direction. Phase 1 (Player).
type PlayerSystem struct {
	world   *world.State
	lastDir vmath.Vec2
}

func NewPlayerSystem(ws *world.State) *PlayerSystem {
	return &PlayerSystem{world: ws}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhasePlayer }

func (s *PlayerSystem) Update(dt time.Duration) {
	p := s.world.Player
	sec := dt.Seconds()

	dir := p.Input.Normalize()
	if !dir.IsZero() {
		s.lastDir = dir
		p.Ramp = math.Min(1, p.Ramp+rampUpPerSec*sec)
	} else {
		p.Ramp = math.Max(0, p.Ramp-rampDownPerSec*sec)
	}
	if p.Ramp == 0 || s.lastDir.IsZero() {
		return
	}

	p.Pos = p.Pos.Add(s.lastDir.Scale(p.Speed * p.Ramp * sec))

	target := s.lastDir.Angle()
	diff := vmath.WrapAngle(target - p.Heading)
	p.Heading = vmath.WrapAngle(p.Heading + vmath.Damp(0, diff, headingLambda, sec))
}

// Reset forgets the drift direction.
func (s *PlayerSystem) Reset() {
	s.lastDir = vmath.Vec2{}
}
