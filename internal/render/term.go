package render

import (
	"math"
	"sync"

	"github.com/emberline/survivor/internal/vmath"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Terminal cells are roughly twice as tall as wide.
const (
	cellsPerUnitX = 2.0
	cellsPerUnitY = 1.0
)

// HUD is the status drawn on top of the world.
type HUD struct {
	Player    vmath.Vec2
	HP        float64
	MaxHP     float64
	XP        float64
	NextXP    float64
	HeroLevel int
	Level     int
	Kills     int
	Clock     string
	State     string
	Zones     []float64 // damage radii around the player
}

type termNode struct {
	kind   Kind
	pos    vmath.Vec2
	height float64
	cue    Cue
}

// Terminal is an Attacher that draws the world top-down on a tcell screen,
// centred on the player. Node calls come from the frame goroutine; Draw may
// run elsewhere.
type Terminal struct {
	mu      sync.Mutex
	screen  tcell.Screen
	nodes   map[Handle]*termNode
	next    Handle
	printer *message.Printer
}

func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen:  screen,
		nodes:   make(map[Handle]*termNode, 256),
		printer: message.NewPrinter(language.English),
	}
}

// Ready always reports true: glyphs need no loading.
func (t *Terminal) Ready(Kind) bool { return true }

func (t *Terminal) Spawn(kind Kind, pos vmath.Vec2) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.nodes[t.next] = &termNode{kind: kind, pos: pos}
	return t.next, nil
}

func (t *Terminal) Move(h Handle, pos vmath.Vec2, height float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := t.nodes[h]; n != nil {
		n.pos = pos
		n.height = height
	}
}

func (t *Terminal) Tag(h Handle, cue Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := t.nodes[h]; n != nil {
		n.cue = cue
	}
}

func (t *Terminal) Remove(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.nodes, h)
}

var (
	styleDefault    = tcell.StyleDefault
	styleHostile    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDying      = tcell.StyleDefault.Foreground(tcell.ColorDarkRed).Dim(true)
	styleExperience = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleMedkit     = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleDecoration = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleZone       = tcell.StyleDefault.Foreground(tcell.ColorYellow).Dim(true)
	stylePlayer     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHUD        = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

func glyph(n *termNode) (rune, tcell.Style) {
	switch n.kind {
	case KindHostile:
		if n.cue == CueDying {
			return 'x', styleDying
		}
		return 'M', styleHostile
	case KindExperience:
		return '*', styleExperience
	case KindMedkit:
		return '+', styleMedkit
	case KindDecoration:
		return '^', styleDecoration
	}
	return '?', styleDefault
}

// Draw renders one frame.
func (t *Terminal) Draw(hud HUD) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.screen
	s.Clear()
	w, h := s.Size()
	cx, cy := w/2, h/2

	toCell := func(p vmath.Vec2) (int, int) {
		d := p.Sub(hud.Player)
		return cx + int(math.Round(d.X*cellsPerUnitX)), cy - int(math.Round(d.Y*cellsPerUnitY))
	}

	for _, r := range hud.Zones {
		steps := int(2 * math.Pi * r * cellsPerUnitX * 2)
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps)
			x, y := toCell(hud.Player.Add(vmath.Polar(a, r)))
			s.SetContent(x, y, '·', nil, styleZone)
		}
	}

	// decorations first so moving things draw over them
	for pass := 0; pass < 2; pass++ {
		for _, n := range t.nodes {
			if (n.kind == KindDecoration) != (pass == 0) {
				continue
			}
			x, y := toCell(n.pos)
			if x < 0 || y < 1 || x >= w || y >= h {
				continue
			}
			r, st := glyph(n)
			s.SetContent(x, y, r, nil, st)
		}
	}

	s.SetContent(cx, cy, '@', nil, stylePlayer)

	line := t.printer.Sprintf(" HP %.0f/%.0f  XP %.0f/%.0f  Lv %d  Diff %d  %s  Kills %d  [%s] ",
		hud.HP, hud.MaxHP, hud.XP, hud.NextXP, hud.HeroLevel, hud.Level, hud.Clock, hud.Kills, hud.State)
	t.drawText(0, 0, w, line, styleHUD)

	switch hud.State {
	case "paused":
		t.drawCentered(cy-2, " PAUSED  esc resume  q quit ", styleHUD)
	case "dead":
		t.drawCentered(cy-2, t.printer.Sprintf(" YOU DIED  survived %s  kills %d  r restart ", hud.Clock, hud.Kills), styleHUD)
	}

	s.Show()
}

func (t *Terminal) drawText(x, y, maxW int, text string, st tcell.Style) {
	for _, r := range text {
		if x >= maxW {
			return
		}
		t.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

func (t *Terminal) drawCentered(y int, text string, st tcell.Style) {
	w, _ := t.screen.Size()
	n := len([]rune(text))
	t.drawText(max(0, (w-n)/2), y, w, text, st)
}
