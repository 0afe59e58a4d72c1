package world

import "github.com/emberline/survivor/internal/vmath"

// PlayerDefaults is what Reset restores.
type PlayerDefaults struct {
	MaxHP    float64
	Speed    float64      // units per second at full ramp
	LevelXP  []float64    // cumulative experience needed per level
	Weapons  []WeaponZone // armed on reset
	Position vmath.Vec2
}

// Player is the singular hero. Created once per session and reset in place
// on restart. Accessed only from the frame goroutine.
type Player struct {
	Pos        vmath.Vec2
	Heading    float64 // radians, atan2(x, y)
	Input      vmath.Vec2
	HP         float64
	MaxHP      float64
	Experience float64
	Level      int
	Speed      float64
	Ramp       float64 // movement acceleration in [0, 1]
	Weapons    []WeaponZone

	levelXP []float64
}

func NewPlayer(d PlayerDefaults) *Player {
	p := &Player{}
	p.Reset(d)
	return p
}

// Reset restores defaults without reallocating the player.
func (p *Player) Reset(d PlayerDefaults) {
	p.Pos = d.Position
	p.Heading = 0
	p.Input = vmath.Vec2{}
	p.HP = d.MaxHP
	p.MaxHP = d.MaxHP
	p.Experience = 0
	p.Level = 0
	p.Speed = d.Speed
	p.Ramp = 0
	p.levelXP = d.LevelXP
	p.Weapons = p.Weapons[:0]
	for _, z := range d.Weapons {
		p.Arm(z)
	}
}

// Dead reports whether hp has reached zero.
func (p *Player) Dead() bool { return p.HP <= 0 }

// Arm adds a weapon zone. Arming a kind the player already holds is a no-op.
func (p *Player) Arm(z WeaponZone) bool {
	for i := range p.Weapons {
		if p.Weapons[i].Kind == z.Kind {
			return false
		}
	}
	z.VisualTime = 0
	p.Weapons = append(p.Weapons, z)
	return true
}

// Damage subtracts amount from hp. Hp may go negative.
func (p *Player) Damage(amount float64) {
	p.HP -= amount
}

// Heal adds amount capped at MaxHP and returns what was actually restored.
func (p *Player) Heal(amount float64) float64 {
	before := p.HP
	p.HP = min(p.HP+amount, p.MaxHP)
	return p.HP - before
}

// AddExperience adds xp and returns how many levels were gained.
func (p *Player) AddExperience(xp float64) int {
	p.Experience += xp
	gained := 0
	for p.Level < len(p.levelXP) && p.Experience >= p.levelXP[p.Level] {
		p.Level++
		gained++
	}
	return gained
}

// NextLevelXP returns the experience needed for the next level, or 0 at the
// cap.
func (p *Player) NextLevelXP() float64 {
	if p.Level >= len(p.levelXP) {
		return 0
	}
	return p.levelXP[p.Level]
}
