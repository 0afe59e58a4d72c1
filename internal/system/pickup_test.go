package system

import (
	"testing"

	"github.com/emberline/survivor/internal/core/ecs"
	coresys "github.com/emberline/survivor/internal/core/system"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/emberline/survivor/internal/world"
)

func TestPickupResolveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ps := NewPickups(f.world, f.bus, nil)
	p := f.world.Player
	p.Damage(50)

	f.world.Experience.Acquire(nil, vmath.Vec2{X: 1}, world.Pickup{Pos: vmath.Vec2{X: 1}, Kind: world.Experience, Value: 20, Radius: 2})
	f.world.Medkits.Acquire(nil, vmath.Vec2{Y: 0.5}, world.Pickup{Pos: vmath.Vec2{Y: 0.5}, Kind: world.Medkit, Value: 20, Radius: 1})

	if n := ps.Resolve(p.Pos); n != 2 {
		t.Fatalf("collected %d, want 2", n)
	}
	hp, xp := p.HP, p.Experience
	if hp != 70 || xp != 20 {
		t.Fatalf("hp=%v xp=%v, want 70/20", hp, xp)
	}

	if n := ps.Resolve(p.Pos); n != 0 {
		t.Fatalf("second resolve collected %d", n)
	}
	if p.HP != hp || p.Experience != xp {
		t.Fatalf("second resolve changed hp=%v xp=%v", p.HP, p.Experience)
	}
	if f.world.Experience.Active()+f.world.Medkits.Active() != 0 {
		t.Fatal("collected pickups still hold slots")
	}
}

func TestPickupRadiusPerKind(t *testing.T) {
	f := newFixture(t)
	ps := NewPickups(f.world, f.bus, nil)
	f.world.Player.Damage(50)

	f.world.Experience.Acquire(nil, vmath.Vec2{X: 1.5}, world.Pickup{Pos: vmath.Vec2{X: 1.5}, Kind: world.Experience, Value: 20, Radius: 2})
	f.world.Medkits.Acquire(nil, vmath.Vec2{X: 1.5}, world.Pickup{Pos: vmath.Vec2{X: 1.5}, Kind: world.Medkit, Value: 20, Radius: 1})

	if n := ps.Resolve(vmath.Vec2{}); n != 1 {
		t.Fatalf("collected %d, want only the experience", n)
	}
	if f.world.Medkits.Active() != 1 {
		t.Fatal("medkit outside its radius collected")
	}
}

func TestPickupMedkitLeftAtFullHealth(t *testing.T) {
	f := newFixture(t)
	ps := NewPickups(f.world, f.bus, nil)
	id, _ := f.world.Medkits.Acquire(nil, vmath.Vec2{}, world.Pickup{Kind: world.Medkit, Value: 20, Radius: 1})

	ps.Resolve(vmath.Vec2{})
	if !f.world.Medkits.Live(id) {
		t.Fatal("medkit consumed at full health")
	}
	if m, _ := f.world.Medkits.Get(id); m.Collected {
		t.Fatal("medkit marked collected at full health")
	}

	f.world.Player.Damage(5)
	ps.Resolve(vmath.Vec2{})
	if f.world.Medkits.Live(id) {
		t.Fatal("medkit not collected once hurt")
	}
	if f.world.Player.HP != 100 {
		t.Fatalf("hp = %v, want capped at 100", f.world.Player.HP)
	}
}

func TestKillDropNotCollectedSameFrame(t *testing.T) {
	f := newFixture(t)
	f.world.Player.Weapons = nil
	runner := coresys.NewRunner()
	runner.Register(NewPickups(f.world, f.bus, nil))
	runner.Register(f.combat())

	// dies on top of the player
	f.world.Hostiles.Acquire(nil, vmath.Vec2{X: 0.1}, world.Hostile{Pos: vmath.Vec2{X: 0.1}, HP: -1})

	runner.Tick(frame)
	if f.world.Experience.Active() != 1 || f.world.Player.Experience != 0 {
		t.Fatalf("drop collected in the frame it was created: active=%d xp=%v",
			f.world.Experience.Active(), f.world.Player.Experience)
	}

	runner.Tick(frame)
	if f.world.Player.Experience != 20 {
		t.Fatalf("xp = %v, want 20 on the next frame", f.world.Player.Experience)
	}
	if f.rec.Live(render.KindExperience) != 0 {
		t.Fatal("drop visual not removed")
	}
	f.world.Experience.Each(func(ecs.SlotID, *world.Pickup) { t.Fatal("drop still live") })
}
