package main

import (
	"context"
	"sync"
	"time"

	"github.com/emberline/survivor/internal/session"
	"github.com/emberline/survivor/internal/vmath"
	"github.com/gdamore/tcell/v2"
)

// Terminals report key presses and auto-repeat but no key releases, so a
// direction is held until no repeat has arrived for holdFor.
const holdFor = 180 * time.Millisecond

type input struct {
	sess *session.Session

	mu   sync.Mutex
	dir  vmath.Vec2
	last time.Time
}

func newInput(sess *session.Session) *input {
	return &input{sess: sess}
}

// poll reads terminal events until the screen is finalized or quit is
// requested.
func (in *input) poll(screen tcell.Screen, quit context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if in.handleKey(ev) {
				quit()
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

// handleKey reports whether the key asks to quit.
func (in *input) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		in.sess.TogglePause()
		return false
	case tcell.KeyUp:
		in.press(vmath.Vec2{Y: 1})
	case tcell.KeyDown:
		in.press(vmath.Vec2{Y: -1})
	case tcell.KeyLeft:
		in.press(vmath.Vec2{X: -1})
	case tcell.KeyRight:
		in.press(vmath.Vec2{X: 1})
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'p', 'P':
			in.sess.TogglePause()
		case 'r', 'R':
			if st := in.sess.State(); st == session.Dead || st == session.Paused {
				_ = in.sess.Restart()
			}
		case 'w', 'W':
			in.press(vmath.Vec2{Y: 1})
		case 's', 'S':
			in.press(vmath.Vec2{Y: -1})
		case 'a', 'A':
			in.press(vmath.Vec2{X: -1})
		case 'd', 'D':
			in.press(vmath.Vec2{X: 1})
		}
	}
	return false
}

func (in *input) press(dir vmath.Vec2) {
	in.mu.Lock()
	in.dir = dir
	in.last = time.Now()
	in.mu.Unlock()
	in.sess.SetInput(dir)
}

// release drops a held direction whose key stopped repeating.
func (in *input) release(now time.Time) {
	in.mu.Lock()
	if in.dir.IsZero() || now.Sub(in.last) < holdFor {
		in.mu.Unlock()
		return
	}
	in.dir = vmath.Vec2{}
	in.mu.Unlock()
	in.sess.SetInput(vmath.Vec2{})
}
