package render

import (
	"strings"
	"testing"

	"github.com/emberline/survivor/internal/vmath"
	"github.com/gdamore/tcell/v2"
)

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)
	return NewTerminal(screen), screen
}

func rowText(s tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestTerminalDrawsNodesRelativeToPlayer(t *testing.T) {
	term, screen := newSimTerminal(t)

	h, err := term.Spawn(KindHostile, vmath.Vec2{X: 3, Y: 2})
	if err != nil {
		t.Fatal(err)
	}
	term.Spawn(KindMedkit, vmath.Vec2{X: -1})

	term.Draw(HUD{Player: vmath.Vec2{}, HP: 100, MaxHP: 100, State: "running", Clock: "00:00"})

	if r, _, _, _ := screen.GetContent(40, 12); r != '@' {
		t.Fatalf("player glyph = %q", r)
	}
	if r, _, _, _ := screen.GetContent(46, 10); r != 'M' {
		t.Fatalf("hostile glyph = %q", r)
	}
	if r, _, _, _ := screen.GetContent(38, 12); r != '+' {
		t.Fatalf("medkit glyph = %q", r)
	}

	term.Tag(h, CueDying)
	term.Draw(HUD{State: "running"})
	if r, _, _, _ := screen.GetContent(46, 10); r != 'x' {
		t.Fatalf("dying glyph = %q", r)
	}

	term.Remove(h)
	term.Draw(HUD{State: "running"})
	if r, _, _, _ := screen.GetContent(46, 10); r == 'x' {
		t.Fatal("removed node still drawn")
	}
}

func TestTerminalHUDFormatsNumbers(t *testing.T) {
	term, screen := newSimTerminal(t)
	term.Draw(HUD{HP: 80, MaxHP: 100, XP: 1200, NextXP: 2000, Kills: 12345, Clock: "04:05", State: "dead"})

	top := rowText(screen, 0, 80)
	for _, want := range []string{"HP 80/100", "XP 1,200/2,000", "04:05", "Kills 12,345"} {
		if !strings.Contains(top, want) {
			t.Fatalf("hud %q missing %q", top, want)
		}
	}
	if !strings.Contains(rowText(screen, 10, 80), "YOU DIED") {
		t.Fatal("death banner missing")
	}
}
